package service

import (
	"github.com/ocerny17-lgtm/kavarna/internal/model"
)

// Merge 把远端集合合并进本地集合，产出新的权威集合。
// 规则：同 id 记录按冲突键 max(updatedAt, timestamp, 0) 裁决，
// 远端严格更大才整条替换（不做字段级合并）；两边出现过的 id 一个都不丢。
// 纯函数且幂等，重复合并同一份远端数据不会改变结果，
// 因此多客户端各自无序地 pull 最终会收敛到同一集合。
func Merge(local, remote []model.Order, now int64) []model.Order {
	l := model.NormalizeAllAt(local, now)
	r := model.NormalizeAllAt(remote, now)

	byID := make(map[int64]model.Order, len(l))
	for _, o := range l {
		byID[o.ID] = o
	}
	for _, o := range r {
		cur, ok := byID[o.ID]
		if !ok || model.ConflictKey(o) > model.ConflictKey(cur) {
			byID[o.ID] = o
		}
	}

	merged := make([]model.Order, 0, len(byID))
	for _, o := range byID {
		merged = append(merged, o)
	}
	model.SortByTimestamp(merged)
	return merged
}

// ordersEqual 判断两个已排序集合是否完全一致（用于决定合并后是否需要落盘）
func ordersEqual(a, b []model.Order) bool {
	if len(a) != len(b) { return false }
	for i := range a {
		if a[i] != b[i] { return false }
	}
	return true
}
