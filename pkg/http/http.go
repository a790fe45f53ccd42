package http

import (
	"fmt"
	"time"
)

/**
 * @file: http.go
 * @description: http server config
 */

type Http struct {
	Host            string
	Port            int
	AccessLog       bool
	PProf           bool
	BodyLimit       int // bytes
	ReadTimeout     int // seconds
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

// Auth configures operator tokens for the governing-site API.
type Auth struct {
	SecretKey    string
	Issuer       string
	AccessExpire time.Duration
}

func (h Http) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func (h Http) UseTLS() bool {
	return h.TLS.CertFile != "" && h.TLS.KeyFile != ""
}
