package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Abdulkaium05/echo-backend/internal/domain"
	"github.com/Abdulkaium05/echo-backend/internal/events"
	"github.com/Abdulkaium05/echo-backend/internal/hub"
	"github.com/Abdulkaium05/echo-backend/internal/service"
	"github.com/Abdulkaium05/echo-backend/internal/store/memory"
)

type env struct {
	store      *memory.Store
	hub        *hub.Hub
	profiles   *service.ProfileService
	directory  *service.DirectoryService
	messages   *service.MessageService
	reactions  *service.ReactionService
	visibility *service.VisibilityService
	redemption *service.RedemptionService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	store := memory.New()
	h := hub.New(log)
	pub := events.Nop{}

	profiles := service.NewProfileService(store, h, pub, log)
	return &env{
		store:      store,
		hub:        h,
		profiles:   profiles,
		directory:  service.NewDirectoryService(store, h, pub, log),
		messages:   service.NewMessageService(store, h, pub, log),
		reactions:  service.NewReactionService(store, h, pub, log),
		visibility: service.NewVisibilityService(store, h, log),
		redemption: service.NewRedemptionService(store, profiles, h, pub, log),
	}
}

func (e *env) seedUser(t *testing.T, u *domain.User) {
	t.Helper()
	if u.DisplayName == "" {
		u.DisplayName = u.ID
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
}

func (e *env) seedChat(t *testing.T, a, b string) *domain.Chat {
	t.Helper()
	chat, err := e.directory.CreateOrGetChat(context.Background(), a, b)
	require.NoError(t, err)
	return chat
}
