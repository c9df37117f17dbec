package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/store"
)

type Handler struct {
	Auth  *AuthHandler
	Tasks *TaskHandler
	Admin *AdminHandler
}

func NewHandler(accounts store.AccountRepository, tasks store.TaskRepository, stats store.StatsRepository,
	hasher *auth.Hasher, issuer *auth.Issuer, log *logrus.Logger) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(accounts, hasher, issuer, log),
		Tasks: NewTaskHandler(tasks, log),
		Admin: NewAdminHandler(accounts, stats, hasher, log),
	}
}
