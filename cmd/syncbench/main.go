package main

import (
    "context"
    "fmt"
    "math"
    "math/rand"
    "os"
    "sort"
    "strconv"
    "time"

    "github.com/ocerny17-lgtm/kavarna/config"
    "github.com/ocerny17-lgtm/kavarna/internal/model"
    "github.com/ocerny17-lgtm/kavarna/internal/repository"
    "github.com/ocerny17-lgtm/kavarna/internal/service"
    "github.com/ocerny17-lgtm/kavarna/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
    if len(vs) == 0 { return 0 }
    xs := append([]time.Duration(nil), vs...)
    sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
    k := int(math.Ceil(p*float64(len(xs)))) - 1
    if k < 0 { k = 0 }
    if k >= len(xs) { k = len(xs)-1 }
    return xs[k]
}

func genOrders(n int, base int64) []model.Order {
    coffees := []string{"espresso", "latte", "cappuccino", "flat white"}
    out := make([]model.Order, n)
    for i := 0; i < n; i++ {
        out[i] = model.Order{
            ID:           base + int64(i),
            CustomerName: fmt.Sprintf("guest-%d", i),
            CoffeeType:   coffees[i%len(coffees)],
            WithMilk:     i%2 == 0,
            SugarSpoons:  i % 3,
            Status:       model.StatusNew,
            Timestamp:    base + int64(i),
            UpdatedAt:    base + int64(i),
        }
    }
    return out
}

func main() {
    cfg := must(config.Load())
    db := must(database.InitDB(cfg))

    // params
    N := 2000    // orders per board
    ITER := 200  // merge iterations
    if s := os.Getenv("N"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { N = v } }
    if s := os.Getenv("ITER"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { ITER = v } }

    base := time.Now().UnixMilli()
    local := genOrders(N, base)

    // merge latency: remote snapshot with a random half of the records touched
    mergeDurations := make([]time.Duration, 0, ITER)
    for i := 0; i < ITER; i++ {
        remote := append([]model.Order(nil), local...)
        for j := range remote {
            if rand.Intn(2) == 0 {
                remote[j].Status = model.StatusClaimed
                remote[j].Barista = "Ondrej"
                remote[j].UpdatedAt = base + int64(N+i)
            }
        }
        st := time.Now()
        local = service.Merge(local, remote, base+int64(N+i))
        mergeDurations = append(mergeDurations, time.Since(st))
    }

    // store roundtrip: whole-board upsert then full load
    repo := repository.NewGormOrderRepository(db)
    must(0, repo.(*repository.GormOrderRepository).InitSchema())
    st := time.Now()
    must(0, repo.Save(context.Background(), local))
    saveDur := time.Since(st)
    st = time.Now()
    loaded := must(repo.Load(context.Background()))
    loadDur := time.Since(st)

    var mergeSum time.Duration
    for _, d := range mergeDurations { mergeSum += d }
    fmt.Printf("N=%d ITER=%d\n", N, ITER)
    fmt.Printf("Merge latency: avg=%v p95=%v p99=%v\n", mergeSum/time.Duration(len(mergeDurations)), pct(mergeDurations, 0.95), pct(mergeDurations, 0.99))
    fmt.Printf("Store save: %v, load: %v, rows=%d\n", saveDur, loadDur, len(loaded))
}
