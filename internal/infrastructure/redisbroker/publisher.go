package redisbroker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

var _ allocation.EventPublisher = (*EventPublisher)(nil)

// NewClient crea el cliente Redis para el broker de eventos.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Addr(),
		DB:   cfg.DB,
	})
}

// EventPublisher publica eventos del dominio como JSON en canales Redis
// (pub/sub) para integraciones externas.
type EventPublisher struct {
	client *redis.Client
}

// NewEventPublisher construye el publicador.
func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

// Publish serializa el evento y lo publica en el canal.
func (p *EventPublisher) Publish(ctx context.Context, channel string, event message.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", event.Name(), err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publicar en %s: %w", channel, err)
	}
	return nil
}
