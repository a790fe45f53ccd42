package router

import (
	"net/http/pprof"
	"runtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/go-arcade/oneupdate/pkg/http/middleware"
	"github.com/go-arcade/oneupdate/pkg/version"
)

var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// debugRouter 注册 pprof 与运行时状态, http.pprof 开启时挂载在 /debug 下, 需要管理员 token
func (rt *Router) debugRouter(r fiber.Router, auth fiber.Handler) {
	r.Use(auth)

	pp := r.Group("/pprof")
	pp.Get("/", adaptor.HTTPHandlerFunc(pprof.Index))
	pp.Get("/cmdline", adaptor.HTTPHandlerFunc(pprof.Cmdline))
	pp.Get("/profile", adaptor.HTTPHandlerFunc(pprof.Profile))
	pp.Get("/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	pp.Post("/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	pp.Get("/trace", adaptor.HTTPHandlerFunc(pprof.Trace))
	for _, name := range profiles {
		pp.Get("/"+name, adaptor.HTTPHandler(pprof.Handler(name)))
	}

	r.Get("/runtime", func(c *fiber.Ctx) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		c.Locals(middleware.DETAIL, fiber.Map{
			"version":    version.GetVersion(),
			"goroutines": runtime.NumGoroutine(),
			"heapAlloc":  mem.HeapAlloc,
			"heapInuse":  mem.HeapInuse,
			"numGC":      mem.NumGC,
			"draining":   rt.draining(),
		})
		return nil
	})
}
