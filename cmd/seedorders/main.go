package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/ocerny17-lgtm/kavarna/config"
	"github.com/ocerny17-lgtm/kavarna/internal/model"
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
	"github.com/ocerny17-lgtm/kavarna/pkg/database"
	"github.com/ocerny17-lgtm/kavarna/pkg/logger"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

// seedorders writes N demo orders straight into the local store.
// Handy for exercising the board and the sync loop without clicking
// through the page. N comes from the env, default 20.
func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, ""); err != nil { panic(err) }

	db := must(database.InitDB(cfg))
	repo := repository.NewGormOrderRepository(db)
	if err := repo.(*repository.GormOrderRepository).InitSchema(); err != nil { panic(err) }
	defer repo.Close()

	n := 20
	if s := os.Getenv("N"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 { n = v }
	}

	coffees := []string{"espresso", "cappuccino", "latte", "flat white", "americano"}
	names := []string{"Tereza", "Jakub", "Marie", "Petr", "Lucie", "Honza"}

	now := time.Now().UnixMilli()
	orders := make([]model.Order, 0, n)
	for i := 0; i < n; i++ {
		ts := now - int64(rand.Intn(3600_000))
		orders = append(orders, model.NormalizeAt(model.Order{
			ID:           ts + int64(i),
			CustomerName: names[rand.Intn(len(names))],
			CoffeeType:   coffees[rand.Intn(len(coffees))],
			WithMilk:     rand.Intn(2) == 0,
			SugarSpoons:  rand.Intn(3),
			Timestamp:    ts,
			UpdatedAt:    ts,
		}, now))
	}

	ctx := context.Background()
	if err := repo.Save(ctx, orders); err != nil { panic(err) }
	total := must(repo.Count(ctx))
	fmt.Printf("seeded %d orders, store now holds %d\n", n, total)
}
