package event

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/logger"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/logic"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// Dispatcher 从事件表读取未处理事件，按活动分组后并发分发
type Dispatcher struct {
	eventLogic *logic.EventLogic
	manager    *ProcessorManager
	pool       *ants.Pool
	batchSize  int
}

// NewDispatcher 创建事件分发器，poolSize 为并发处理的活动数上限
func NewDispatcher(eventLogic *logic.EventLogic, manager *ProcessorManager, poolSize, batchSize int) (*Dispatcher, error) {
	pool, err := ants.NewPool(poolSize, ants.WithPanicHandler(func(p interface{}) {
		logger.Error("Event processor panicked: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher pool of size %d: %w", poolSize, err)
	}
	return &Dispatcher{
		eventLogic: eventLogic,
		manager:    manager,
		pool:       pool,
		batchSize:  batchSize,
	}, nil
}

// DispatchPending 处理一批未处理事件，返回成功处理的数量。
// 同一活动的事件按写入顺序串行处理，某个事件失败后该活动剩余事件留到下一轮。
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	events, err := d.eventLogic.FetchUnprocessed(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	groups := groupByCampaign(events)
	logger.Debug("Dispatching %d events across %d campaigns", len(events), len(groups))

	var (
		mu        sync.Mutex
		processed = make([]int64, 0, len(events))
		wg        sync.WaitGroup
	)
	for _, group := range groups {
		group := group
		wg.Add(1)
		err := d.pool.Submit(func() {
			defer wg.Done()
			done := d.processGroup(ctx, group)
			mu.Lock()
			processed = append(processed, done...)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit events of campaign %d to pool: %v", group[0].CampaignId, err)
		}
	}
	wg.Wait()

	if err := d.eventLogic.MarkProcessed(ctx, processed); err != nil {
		return 0, err
	}
	return len(processed), nil
}

func (d *Dispatcher) processGroup(ctx context.Context, events []model.EventModel) []int64 {
	done := make([]int64, 0, len(events))
	for i := range events {
		if ctx.Err() != nil {
			return done
		}
		if err := d.manager.ProcessEvent(ctx, &events[i]); err != nil {
			logger.Error("Failed to process event %d (%s) of campaign %d: %v",
				events[i].Id, events[i].EventType, events[i].CampaignId, err)
			return done
		}
		done = append(done, events[i].Id)
	}
	return done
}

// groupByCampaign 按活动分组，组内保持事件 id 顺序
func groupByCampaign(events []model.EventModel) [][]model.EventModel {
	index := make(map[int64]int)
	var groups [][]model.EventModel
	for _, e := range events {
		i, ok := index[e.CampaignId]
		if !ok {
			i = len(groups)
			index[e.CampaignId] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(a, b int) bool { return g[a].Id < g[b].Id })
	}
	return groups
}

// Running 正在执行的 worker 数
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close 等待进行中的任务结束并释放协程池
func (d *Dispatcher) Close() error {
	return d.pool.ReleaseTimeout(5 * time.Second)
}
