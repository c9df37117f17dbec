package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/cleantask/cleantask-api/internal/middleware"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/store"
	"github.com/cleantask/cleantask-api/internal/utils"
)

type TaskHandler struct {
	tasks store.TaskRepository
	log   *logrus.Logger
}

func NewTaskHandler(tasks store.TaskRepository, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

type taskReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// ---------------------- CREATE ----------------------

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req taskReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status == "" {
		req.Status = string(models.TaskPending)
	}
	if req.Priority == "" {
		req.Priority = string(models.PriorityMedium)
	}

	task := &models.Task{
		AccountID:   id.AccountID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	}
	if !task.Status.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid status value")
		return
	}
	if !task.Priority.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid priority value")
		return
	}

	if err := h.tasks.Create(r.Context(), task); err != nil {
		h.log.WithError(err).Error("task creation failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusCreated, task)
}

// ---------------------- GET ONE ----------------------

func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id.AccountID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("task lookup failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, task)
}

// ---------------------- LIST ----------------------

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	filter := store.TaskFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = models.TaskStatus(s)
		if !filter.Status.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid status value")
			return
		}
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		filter.Priority = models.TaskPriority(p)
		if !filter.Priority.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid priority value")
			return
		}
	}

	tasks, err := h.tasks.List(r.Context(), id.AccountID, filter)
	if err != nil {
		h.log.WithError(err).Error("task listing failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	utils.JSON(w, http.StatusOK, tasks)
}

// ---------------------- UPDATE ----------------------

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id.AccountID, taskID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("task lookup failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			utils.JSONError(w, http.StatusBadRequest, "title is required")
			return
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
		if !task.Status.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid status value")
			return
		}
	}
	if req.Priority != nil {
		task.Priority = models.TaskPriority(*req.Priority)
		if !task.Priority.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid priority value")
			return
		}
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := h.tasks.Update(r.Context(), task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "task not found")
			return
		}
		h.log.WithError(err).Error("task update failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	task.UpdatedAt = time.Now()

	utils.JSON(w, http.StatusOK, task)
}

// ---------------------- PATCH STATUS ----------------------

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid status value")
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), id.AccountID, taskID, status)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("task status update failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, task)
}

// ---------------------- DELETE ----------------------

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.tasks.Delete(r.Context(), id.AccountID, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "task not found")
			return
		}
		h.log.WithError(err).Error("task deletion failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
