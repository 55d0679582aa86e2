package scheduler

import (
	"log"
	"sync"
	"time"

	"dropwatch/models"
)

// CheckByIDFunc runs the check pipeline for a product id. Used by the async
// API surface, which only knows ids.
type CheckByIDFunc func(productID int) (*models.AlertDecision, error)

// TaskManager runs API-triggered price checks in the background so the
// handler can answer immediately with a task id to poll.
type TaskManager struct {
	tasks      map[string]*models.PriceCheckTask
	taskQueue  chan *models.PriceCheckTask
	workers    int
	maxWorkers int
	checkFunc  CheckByIDFunc
	mutex      sync.RWMutex
	stopChan   chan struct{}
}

// NewTaskManager creates a task manager and starts its dispatch loop.
func NewTaskManager(checkFunc CheckByIDFunc, maxWorkers int) *TaskManager {
	tm := &TaskManager{
		tasks:      make(map[string]*models.PriceCheckTask),
		taskQueue:  make(chan *models.PriceCheckTask, 100),
		maxWorkers: maxWorkers,
		checkFunc:  checkFunc,
		stopChan:   make(chan struct{}),
	}

	go tm.processTasks()
	log.Printf("Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask queues a price check for the product and returns the task.
func (tm *TaskManager) SubmitTask(productID int) *models.PriceCheckTask {
	task := models.NewPriceCheckTask(productID)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("Task %s submitted for product %d", task.ID, productID)
	default:
		task.Fail("Task queue is full")
		log.Printf("Failed to submit task %s, queue full", task.ID)
	}

	return task
}

// GetTask returns a task by id.
func (tm *TaskManager) GetTask(taskID string) (*models.PriceCheckTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// GetActiveTasks returns all queued or running tasks.
func (tm *TaskManager) GetActiveTasks() []*models.PriceCheckTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var active []*models.PriceCheckTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			active = append(active, task)
		}
	}
	return active
}

// CleanupOldTasks drops completed tasks older than maxAge.
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
		}
	}
}

func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.mutex.Lock()
			canStart := tm.workers < tm.maxWorkers
			if canStart {
				tm.workers++
			}
			tm.mutex.Unlock()

			if canStart {
				go tm.worker(task)
			} else {
				go func() {
					time.Sleep(1 * time.Second)
					select {
					case tm.taskQueue <- task:
					default:
						task.Fail("System overloaded, unable to process task")
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(1 * time.Hour)

		case <-tm.stopChan:
			log.Println("Task manager stopped")
			return
		}
	}
}

func (tm *TaskManager) worker(task *models.PriceCheckTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		tm.mutex.Unlock()
	}()

	task.Start()

	decision, err := tm.checkFunc(task.ProductID)
	if err != nil {
		task.Fail(err.Error())
		log.Printf("Task %s failed: %v", task.ID, err)
		return
	}

	task.Complete(decision)
	log.Printf("Task %s completed in %v", task.ID, task.Duration())
}

// Stop stops the task manager's dispatch loop.
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
}
