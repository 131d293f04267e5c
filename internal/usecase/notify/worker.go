package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"svitlo-bot/internal/domain"
	"svitlo-bot/internal/infra/metrics"
)

// Worker читает очередь доставки и отправляет уведомления пользователям.
// Доставка «не более одного раза»: ошибка отправки логируется, задача не
// возвращается в очередь.
type Worker struct {
	log   zerolog.Logger
	queue domain.AlertQueue
	send  domain.Deliverer
}

func NewWorker(log zerolog.Logger, queue domain.AlertQueue, send domain.Deliverer) *Worker {
	return &Worker{log: log, queue: queue, send: send}
}

// Run крутит цикл доставки до отмены контекста.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().Msg("worker: запуск цикла доставки")
	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.log.Info().Msg("worker: остановка цикла доставки")
				return
			}
			w.log.Error().Err(err).Msg("worker: ошибка чтения очереди")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if err := w.send.Deliver(job.TGUserID, job.Text); err != nil {
			metrics.AlertSendErrors.Inc()
			w.log.Error().Err(err).Str("job_id", job.ID).Int64("tg_user_id", job.TGUserID).
				Str("kind", job.Kind).Msg("worker: не удалось отправить уведомление")
		}
	}
}
