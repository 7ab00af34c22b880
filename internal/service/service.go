package service

import (
	"github.com/orgchart-app/orgchart-backend/internal/cache"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/socket"
)

// ============================================
// Services Container
// ============================================

type Services struct {
	OrgChart    OrgChartService
	Cache       *cache.IdentityCache
	Broadcaster *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Repo        repository.OrgChartRepository
	Cache       *cache.IdentityCache
	Broadcaster *socket.Broadcaster
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		OrgChart:    NewOrgChartService(deps.Repo, deps.Broadcaster),
		Cache:       deps.Cache,
		Broadcaster: deps.Broadcaster,
	}
}
