package handlers

import (
	"net/http"
	"strconv"

	"task_tracker/internal/models"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Title       *string `json:"title" binding:"required"` // present, may be ""
	Description string  `json:"description"`
}

// updateTaskRequest leaves absent fields nil so only supplied ones change.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r updateTaskRequest) patch() models.TaskPatch {
	return models.TaskPatch{Title: r.Title, Description: r.Description, Completed: r.Completed}
}

// taskID parses the :id path segment, answering 422 when it is not an integer.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, msgInvalidTaskID)
		return 0, false
	}
	return id, true
}

// @Summary   Create a task
// @Tags      tasks
// @Accept    json
// @Produce   json
// @Param     body  body      createTaskRequest  true  "Task"
// @Success   201   {object}  models.Task
// @Failure   400   {object}  errorResponse
// @Failure   401   {object}  errorResponse
// @Router    /tasks [post]
// @Security  BearerAuth
func (h *Handler) createTask(c *gin.Context) {
	var input createTaskRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	task, err := h.services.CreateTask(c.Request.Context(), currentUser(c), *input.Title, input.Description)
	h.metrics.ObserveTaskOp("create", err)
	if err != nil {
		h.writeServiceError(c, err, "task_create_failed")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary   List own tasks
// @Tags      tasks
// @Produce   json
// @Success   200  {array}   models.Task
// @Failure   401  {object}  errorResponse
// @Router    /tasks [get]
// @Security  BearerAuth
func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.services.ListTasks(c.Request.Context(), currentUser(c))
	h.metrics.ObserveTaskOp("list", err)
	if err != nil {
		h.writeServiceError(c, err, "task_list_failed")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary   Get a task
// @Tags      tasks
// @Produce   json
// @Param     id   path      int  true  "Task id"
// @Success   200  {object}  models.Task
// @Failure   401  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Failure   422  {object}  errorResponse
// @Router    /tasks/{id} [get]
// @Security  BearerAuth
func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.services.GetTask(c.Request.Context(), id, currentUser(c))
	h.metrics.ObserveTaskOp("get", err)
	if err != nil {
		h.writeServiceError(c, err, "task_get_failed")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Update a task
// @Description  Only the supplied fields change; updated_at always advances.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tasks/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var input updateTaskRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	task, err := h.services.UpdateTask(c.Request.Context(), id, currentUser(c), input.patch())
	h.metrics.ObserveTaskOp("update", err)
	if err != nil {
		h.writeServiceError(c, err, "task_update_failed")
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary   Delete a task
// @Tags      tasks
// @Param     id   path  int  true  "Task id"
// @Success   204
// @Failure   401  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Failure   422  {object}  errorResponse
// @Router    /tasks/{id} [delete]
// @Security  BearerAuth
func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	err := h.services.DeleteTask(c.Request.Context(), id, currentUser(c))
	h.metrics.ObserveTaskOp("delete", err)
	if err != nil {
		h.writeServiceError(c, err, "task_delete_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
