package simulator

import (
	"context"
	"io"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/order/service"
)

type Config struct {
	Orders        int
	MaxItems      int
	DeliveryShare float64 // 0..1
	Seed          int64
}

type Result struct {
	Placed int
	Failed int
	Orders []domain.Order
}

// Simulator places fake orders through fresh checkout workflows, one per
// simulated customer.
type Simulator struct {
	newWorkflow func() *service.Workflow
	progress    io.Writer
	lg          *logger.Logger
}

func New(newWorkflow func() *service.Workflow, progress io.Writer) *Simulator {
	return &Simulator{newWorkflow: newWorkflow, progress: progress, lg: logger.New("simulate")}
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 3
	}
	fake := faker.NewWithSeed(rand.NewSource(cfg.Seed))
	menu := domain.Menu()

	bar := progressbar.NewOptions(cfg.Orders,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("placing orders"),
		progressbar.OptionShowCount(),
	)
	defer func() { _ = bar.Finish() }()

	var res Result
	for i := 0; i < cfg.Orders; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		wf := s.newWorkflow()
		for n := fake.IntBetween(1, cfg.MaxItems); n > 0; n-- {
			if _, err := wf.AddItem(menu[fake.IntBetween(0, len(menu)-1)].ID); err != nil {
				return res, err
			}
		}

		form := service.Form{CustomerName: fake.Person().Name(), Type: domain.OrderTypePickup}
		if fake.IntBetween(0, 99) < int(cfg.DeliveryShare*100) {
			form.Type = domain.OrderTypeDelivery
			form.Address = fake.Address().Address()
		}

		order, err := wf.Submit(ctx, form)
		if err != nil {
			res.Failed++
			s.lg.Warn("simulated_order_failed", err, map[string]any{"n": i + 1})
		} else {
			res.Placed++
			res.Orders = append(res.Orders, order)
		}
		_ = bar.Add(1)
	}

	s.lg.Info("simulation_finished", map[string]any{"placed": res.Placed, "failed": res.Failed})
	return res, nil
}
