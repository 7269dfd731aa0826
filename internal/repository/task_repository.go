package repository

import (
	"context"

	"gorm.io/gorm"

	"planboard/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database, assigning its identifier
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = NewID()
	}
	task.BoardID = model.CanonicalID(task.BoardID)
	return r.db.WithContext(ctx).Create(task).Error
}

// Update applies the supplied fields to the owner's task
func (r *TaskRepository) Update(ctx context.Context, id, owner string, patch model.TaskPatch) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND author_username = ?", model.CanonicalID(id), owner).
		Updates(patch.Fields("title", "description", "status"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes the owner's task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id, owner string) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}

	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ? AND author_username = ?", model.CanonicalID(id), owner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListByBoard returns the tasks of one board and owner in insertion order
func (r *TaskRepository) ListByBoard(ctx context.Context, boardID, owner string) ([]model.Task, error) {
	tasks := []model.Task{}
	result := r.db.WithContext(ctx).
		Where("board_id = ? AND author_username = ?", model.CanonicalID(boardID), owner).
		Order("created_at, id").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// List returns every task regardless of owner
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
