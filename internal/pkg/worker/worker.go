package worker

import (
	"time"

	"khanmall/internal/domain/payment/model"
	"khanmall/internal/domain/payment/repository"
	"khanmall/pkg/logger"

	"go.uber.org/zap"
)

// EventTask is one webhook audit record waiting to be persisted.
type EventTask struct {
	Content   string
	Sender    string
	Result    string
	Reference string
	Retry     int
}

// WorkerPool persists webhook audit events off the request path. The webhook
// handler must answer fast and must never fail because the audit write did.
type WorkerPool struct {
	TaskQueue  chan EventTask
	RetryQueue chan EventTask
	Repo       repository.EventRepository
	WorkerNum  int
	MaxRetry   int
}

func NewWorkerPool(repo repository.EventRepository, workerNum int, bufferSize int) *WorkerPool {
	return &WorkerPool{
		TaskQueue:  make(chan EventTask, bufferSize),
		RetryQueue: make(chan EventTask, bufferSize/2),
		Repo:       repo,
		WorkerNum:  workerNum,
		MaxRetry:   3,
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	go p.retryWorker()
	logger.Log.Info("payment event worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.processTask(task); err != nil {
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
					logger.Log.Warn("audit write failed, re-queued",
						zap.Int("worker", id), zap.Int("attempt", task.Retry), zap.Error(err))
				default:
					p.logFailedTask(task, err)
				}
			} else {
				p.logFailedTask(task, err)
			}
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// Back off before retrying.
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logFailedTask(task, nil)
		}
	}
}

func (p *WorkerPool) processTask(task EventTask) error {
	return p.Repo.Create(&model.PaymentEvent{
		Content:   task.Content,
		Sender:    task.Sender,
		Result:    task.Result,
		Reference: task.Reference,
	})
}

func (p *WorkerPool) logFailedTask(task EventTask, err error) {
	logger.Log.Error("audit event dropped",
		zap.String("result", task.Result),
		zap.String("reference", task.Reference),
		zap.Error(err))
}

// AddTask enqueues without blocking; a full queue drops the audit record
// rather than stalling the webhook handler.
func (p *WorkerPool) AddTask(task EventTask) {
	select {
	case p.TaskQueue <- task:
	default:
		p.logFailedTask(task, nil)
	}
}
