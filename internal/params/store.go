package params

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pryimakv14/StockOutPredict/pkg/logger"
)

// ConfigPath SKU 参数 blob 在配置存储中的路径
const ConfigPath = "stockout/sku_parameters"

// Backend 配置 blob 存储接口（外部协作方）
type Backend interface {
	// Get 读取 blob，不存在返回空串
	Get(ctx context.Context, path string) (string, error)
	// Save 整体覆盖写入 blob
	Save(ctx context.Context, path string, value string) error
}

// Store SKU 参数集合的唯一入口
// 集合持久化为单个 JSON 数组 blob，所有写操作都是
// 读全量 → 内存合并 → 写全量；writeMu 串行化本进程内的
// 全部合并，跨进程写入仍靠合并前强制重读兜底
type Store struct {
	backend Backend
	log     logger.Logger

	writeMu sync.Mutex // 串行化读改写周期

	cacheMu sync.RWMutex
	cached  []SkuParams
	loaded  bool
}

// NewStore 创建参数存储
func NewStore(backend Backend, log logger.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log,
	}
}

// List 返回全部参数行（存储顺序）
// forceRefresh 为 true 时先失效缓存再加载，保证读到
// 其他进程在缓存预热后写入的数据
func (s *Store) List(ctx context.Context, forceRefresh bool) []SkuParams {
	if forceRefresh {
		s.Refresh()
	}

	s.cacheMu.RLock()
	if s.loaded {
		rows := copyRows(s.cached)
		s.cacheMu.RUnlock()
		return rows
	}
	s.cacheMu.RUnlock()

	rows := s.loadFresh(ctx)
	s.storeCache(rows)
	return copyRows(rows)
}

// ListSkus 返回集合内全部 SKU（存储顺序，跳过空值）
func (s *Store) ListSkus(ctx context.Context) []string {
	rows := s.List(ctx, false)
	skus := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Sku != "" {
			skus = append(skus, row.Sku)
		}
	}
	return skus
}

// Get 按 SKU 查找参数行（线性扫描，首个匹配生效）
func (s *Store) Get(ctx context.Context, sku string) (SkuParams, bool) {
	for _, row := range s.List(ctx, false) {
		if row.Sku == sku {
			return row, true
		}
	}
	return SkuParams{}, false
}

// Refresh 失效读缓存，下次读取强制回源
func (s *Store) Refresh() {
	s.cacheMu.Lock()
	s.cached = nil
	s.loaded = false
	s.cacheMu.Unlock()
}

// Merge 合并单个 SKU 的部分字段
// 行存在则浅合并（仅覆盖 patch 中出现的键），不存在则追加新行；
// 整体重写 blob，持久化失败以 error 返回，调用方记录后继续
func (s *Store) Merge(ctx context.Context, sku string, patch Patch) error {
	if sku == "" {
		return fmt.Errorf("sku is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rows := s.loadFresh(ctx)

	updated := false
	for i := range rows {
		if rows[i].Sku == sku {
			applyPatch(&rows[i], patch)
			updated = true
			break
		}
	}
	if !updated {
		row := SkuParams{Sku: sku}
		applyPatch(&row, patch)
		rows = append(rows, row)
	}

	return s.persist(ctx, rows)
}

// BatchMerge 批量合并多个 SKU 的部分字段
// 先按 SKU 建索引再逐条应用，最后一次性重写，
// 避免 N 次独立写入互相覆盖
func (s *Store) BatchMerge(ctx context.Context, updates map[string]Patch) error {
	if len(updates) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rows := s.loadFresh(ctx)

	index := make(map[string]int, len(rows))
	for i := range rows {
		if rows[i].Sku != "" {
			if _, exists := index[rows[i].Sku]; !exists {
				index[rows[i].Sku] = i
			}
		}
	}

	for sku, patch := range updates {
		if sku == "" {
			continue
		}
		if i, ok := index[sku]; ok {
			applyPatch(&rows[i], patch)
		} else {
			row := SkuParams{Sku: sku}
			applyPatch(&row, patch)
			rows = append(rows, row)
			index[sku] = len(rows) - 1
		}
	}

	return s.persist(ctx, rows)
}

// loadFresh 绕过缓存从后端读取并解析
// blob 缺失或不可解析按空集合处理（软失败）
func (s *Store) loadFresh(ctx context.Context) []SkuParams {
	raw, err := s.backend.Get(ctx, ConfigPath)
	if err != nil {
		s.log.Warnf(ctx, "[ParamStore] load config failed, treating as empty: %v", err)
		return nil
	}
	if raw == "" {
		return nil
	}

	var rows []SkuParams
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		s.log.Warnf(ctx, "[ParamStore] unparseable config blob, treating as empty: %v", err)
		return nil
	}
	return rows
}

// persist 序列化并写回后端，成功后刷新缓存
func (s *Store) persist(ctx context.Context, rows []SkuParams) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal sku parameters failed: %w", err)
	}

	if err := s.backend.Save(ctx, ConfigPath, string(data)); err != nil {
		return fmt.Errorf("save sku parameters failed: %w", err)
	}

	// 写后立即更新缓存，进程内后续读取可见本次修改
	s.storeCache(rows)
	return nil
}

func (s *Store) storeCache(rows []SkuParams) {
	s.cacheMu.Lock()
	s.cached = rows
	s.loaded = true
	s.cacheMu.Unlock()
}

// applyPatch 按字段表应用部分更新，未知键忽略
func applyPatch(row *SkuParams, patch Patch) {
	for name, value := range patch {
		if f, ok := FieldByName(name); ok {
			f.Set(row, value)
		}
	}
}

func copyRows(rows []SkuParams) []SkuParams {
	out := make([]SkuParams, len(rows))
	copy(out, rows)
	return out
}
