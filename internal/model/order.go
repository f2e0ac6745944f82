package model

import (
	"encoding/json"
	"sort"
)

// Status 订单状态（字符串枚举，只允许向前流转）
type Status string

const (
	StatusNew        Status = "new"
	StatusClaimed    Status = "claimed"
	StatusDelivering Status = "delivering"
	// StatusDone 为保留状态：归一化可以产生它（历史 completed 标记），
	// 但生命周期操作不会主动流转到 done。
	StatusDone Status = "done"
)

// Order 饮品订单，id 取创建时刻的毫秒时间戳，同时作为合并键
type Order struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomerName string `json:"customerName" gorm:"type:varchar(64);not null"`
	CoffeeType   string `json:"coffeeType" gorm:"type:varchar(64);not null"`
	ExtraWishes  string `json:"extraWishes" gorm:"type:text"`
	WithMilk     bool   `json:"withMilk"`
	SugarSpoons  int    `json:"sugarSpoons"`
	Status       Status `json:"status" gorm:"type:varchar(16);index"`
	Barista      string `json:"barista,omitempty" gorm:"type:varchar(36)"`
	// Timestamp 创建时刻（毫秒），不可变，展示排序键
	Timestamp int64 `json:"timestamp" gorm:"index"`
	// UpdatedAt 最近一次变更时刻（毫秒），合并冲突的主裁决键。
	// 关闭 gorm 的自动时间戳，避免按秒覆盖毫秒语义。
	UpdatedAt int64 `json:"updatedAt" gorm:"autoUpdateTime:false"`
	// Completed 旧版 schema 的完成标记，仅出现在旧数据里，归一化后清空
	Completed bool `json:"completed,omitempty" gorm:"-"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// ConflictKey 冲突裁决键：max(updatedAt, timestamp, 0)
func ConflictKey(o Order) int64 {
	k := int64(0)
	if o.UpdatedAt > k { k = o.UpdatedAt }
	if o.Timestamp > k { k = o.Timestamp }
	return k
}

// NormalizeAt 把单条记录补齐到当前 schema。纯函数：now 由调用方传入。
// 幂等：对已归一化的记录再次调用得到相同结果。
func NormalizeAt(o Order, now int64) Order {
	if o.Status == "" {
		if o.Completed {
			o.Status = StatusDone
		} else {
			o.Status = StatusNew
		}
	}
	o.Completed = false
	if o.SugarSpoons < 0 { o.SugarSpoons = 0 }
	ts, up := o.Timestamp, o.UpdatedAt
	if ts <= 0 { ts = up }
	if ts <= 0 { ts = now }
	if up <= 0 { up = o.Timestamp }
	if up <= 0 { up = now }
	o.Timestamp, o.UpdatedAt = ts, up
	return o
}

// NormalizeAllAt 逐条归一化，保持原有顺序，不排序不去重
func NormalizeAllAt(orders []Order, now int64) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = NormalizeAt(o, now)
	}
	return out
}

// SortByTimestamp 按创建时间升序排序（展示顺序），id 作为决定性次序键
func SortByTimestamp(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Timestamp != orders[j].Timestamp {
			return orders[i].Timestamp < orders[j].Timestamp
		}
		return orders[i].ID < orders[j].ID
	})
}

// Active 过滤掉 done 状态（不再展示，但仍然保留在存储里）
func Active(orders []Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Status != StatusDone {
			out = append(out, o)
		}
	}
	return out
}

// DecodeOrders decodes an arbitrary JSON payload into order records.
// The remote channel has no schema enforcement, so decoding is per-field
// tolerant: a missing or mistyped field degrades to its default instead of
// rejecting the record. Only a non-array payload is an error.
func DecodeOrders(data []byte) ([]Order, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(raw))
	for _, r := range raw {
		out = append(out, decodeOrder(r))
	}
	return out, nil
}

func decodeOrder(data json.RawMessage) Order {
	o := Order{WithMilk: true}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return o
	}
	intField(fields, "id", &o.ID)
	strField(fields, "customerName", &o.CustomerName)
	strField(fields, "coffeeType", &o.CoffeeType)
	strField(fields, "extraWishes", &o.ExtraWishes)
	boolField(fields, "withMilk", &o.WithMilk)
	var sugar float64
	floatField(fields, "sugarSpoons", &sugar)
	o.SugarSpoons = int(sugar)
	var status string
	strField(fields, "status", &status)
	o.Status = Status(status)
	strField(fields, "barista", &o.Barista)
	intField(fields, "timestamp", &o.Timestamp)
	intField(fields, "updatedAt", &o.UpdatedAt)
	boolField(fields, "completed", &o.Completed)
	return o
}

// 旧数据里 id/时间戳可能是浮点字面量，统一按 float64 接收再截断
func intField(fields map[string]json.RawMessage, key string, dst *int64) {
	raw, ok := fields[key]
	if !ok { return }
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*dst = int64(f)
	}
}

func floatField(fields map[string]json.RawMessage, key string, dst *float64) {
	raw, ok := fields[key]
	if !ok { return }
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*dst = f
	}
}

func strField(fields map[string]json.RawMessage, key string, dst *string) {
	raw, ok := fields[key]
	if !ok { return }
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dst = s
	}
}

func boolField(fields map[string]json.RawMessage, key string, dst *bool) {
	raw, ok := fields[key]
	if !ok { return }
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		*dst = b
	}
}
