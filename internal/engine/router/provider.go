package router

import (
	"github.com/google/wire"

	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/shutdown"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(ProvideRouter)

// ProvideRouter 提供路由实例
func ProvideRouter(httpConf *http.Http, services *service.Services, repos *repo.Repositories, sm *shutdown.Manager) *Router {
	return NewRouter(httpConf, services, repos.Tokens, sm)
}
