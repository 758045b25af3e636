package internal

import (
	"net/http"
	"staffping/internal/controllers"
	"staffping/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/online", http.HandlerFunc(apiController.GetOnline))
	routers.Get("/lastseen", http.HandlerFunc(apiController.GetLastSeen))
	return routers
}
