package redisbroker

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/Asignacion-api/internal/application/messagebus"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ChangeBatchQuantityChannel canal de entrada para cambios de cantidad
// publicados por el sistema de compras.
const ChangeBatchQuantityChannel = "change_batch_quantity"

// Consumer se suscribe a change_batch_quantity y convierte cada mensaje en un
// comando ChangeBatchQuantity hacia el bus. Corre como goroutine del proceso
// y termina cuando se cancela el contexto.
type Consumer struct {
	client *redis.Client
	bus    *messagebus.Bus
	log    *logger.Logger
}

// NewConsumer construye el consumidor.
func NewConsumer(client *redis.Client, bus *messagebus.Bus, log *logger.Logger) *Consumer {
	return &Consumer{client: client, bus: bus, log: log}
}

// Run bloquea consumiendo mensajes hasta que el contexto se cancele.
func (c *Consumer) Run(ctx context.Context) error {
	sub := c.client.Subscribe(ctx, ChangeBatchQuantityChannel)
	defer sub.Close()

	ch := sub.Channel()
	c.log.Info().Str("channel", ChangeBatchQuantityChannel).Msg("consumidor redis suscrito")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			c.dispatch(ctx, msg.Payload)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, payload string) {
	var cmd message.ChangeBatchQuantity
	if err := json.Unmarshal([]byte(payload), &cmd); err != nil {
		c.log.Error().Err(err).Str("payload", payload).Msg("mensaje redis inválido, se descarta")
		return
	}
	if _, err := c.bus.Handle(ctx, cmd); err != nil {
		c.log.Error().Err(err).Str("batchref", cmd.Ref).Msg("comando ChangeBatchQuantity falló")
	}
}
