package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-arcade/oneupdate/internal/engine/bootstrap"
	"github.com/go-arcade/oneupdate/pkg/version"
)

var (
	configFile  string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(string(version.GetVersion().Json()))
		return
	}

	// Bootstrap 初始化应用
	app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oneupdate: %v\n", err)
		os.Exit(1)
	}

	// 启动应用并等待退出信号
	bootstrap.Run(app, cleanup)
}
