// cmd/api/tasks.go
package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kmilodenisglez/task-backend/internal/store"
)

const statsWindow = 7 * 24 * time.Hour

type CreateTaskPayload struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// UpdateTaskPayload usa punteros para que los campos ausentes no cambien.
type UpdateTaskPayload struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type taskListResponse struct {
	Tasks []store.Task `json:"tasks"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateTaskPayload
	if err := app.readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payload.Title = strings.TrimSpace(payload.Title)
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	task := &store.Task{
		Title:       payload.Title,
		Description: payload.Description,
		Completed:   payload.Completed,
		UserID:      getCurrentUser(r).ID,
	}
	if err := app.store.Tasks.Create(r.Context(), task); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, task)
}

func (app *application) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	tasks, total, err := app.store.Tasks.List(r.Context(), getCurrentUser(r).ID, filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, taskListResponse{
		Tasks: tasks,
		Total: total,
		Skip:  filter.Skip,
		Limit: filter.Limit,
	})
}

func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	filter := store.TaskFilter{Limit: store.DefaultTaskLimit}

	if v := q.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return filter, errors.New("skip must be a non-negative integer")
		}
		filter.Skip = skip
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > store.MaxTaskLimit {
			return filter, errors.New("limit must be an integer between 1 and 1000")
		}
		filter.Limit = limit
	}

	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("completed must be true or false")
		}
		filter.Completed = &completed
	}

	filter.Search = strings.TrimSpace(q.Get("search"))

	if v := q.Get("created_after"); v != "" {
		after, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("created_after must be an RFC3339 timestamp")
		}
		filter.CreatedAfter = &after
	}

	return filter, nil
}

func (app *application) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, getTaskFromCtx(r))
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	task := getTaskFromCtx(r)

	var payload UpdateTaskPayload
	if err := app.readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Title != nil {
		title := strings.TrimSpace(*payload.Title)
		payload.Title = &title
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Title != nil {
		task.Title = *payload.Title
	}
	if payload.Description != nil {
		task.Description = payload.Description
	}
	if payload.Completed != nil {
		task.Completed = *payload.Completed
	}

	if err := app.store.Tasks.Update(r.Context(), task); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, "Task not found")
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.jsonResponse(w, http.StatusOK, task)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	task := getTaskFromCtx(r)

	if err := app.store.Tasks.Delete(r.Context(), task.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, "Task not found")
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Task deleted"})
}

func (app *application) taskStatsHandler(w http.ResponseWriter, r *http.Request) {
	user := getCurrentUser(r)

	stats, err := app.store.Tasks.Stats(r.Context(), user.ID, time.Now().UTC().Add(-statsWindow))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Debug("task statistics calculated", "user_id", user.ID, "total", stats.TotalTasks)
	app.jsonResponse(w, http.StatusOK, stats)
}
