package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/moveinsync/movi/internal/domain/chat"
	"github.com/moveinsync/movi/internal/port/cache"
)

// CachedExecutor decorates a Registry with a short-TTL result cache for
// read-only tools. Mutating tools run uncached and clear the whole cache on
// success, so reads after a mutation always see fresh state.
type CachedExecutor struct {
	registry *Registry
	cache    cache.Cache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewCachedExecutor wraps the registry with the given cache.
func NewCachedExecutor(registry *Registry, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedExecutor {
	return &CachedExecutor{registry: registry, cache: c, ttl: ttl, logger: logger}
}

// Execute runs the call, serving read-only tools from cache when possible.
func (e *CachedExecutor) Execute(ctx context.Context, call chat.ToolCall) (string, error) {
	tool, err := e.registry.Lookup(call.Name)
	if err != nil {
		return "", err
	}

	if !tool.ReadOnly {
		out, err := tool.Run(ctx, call.Args)
		if err != nil {
			return "", err
		}
		if cerr := e.cache.Clear(ctx); cerr != nil {
			e.logger.Warn("clearing tool cache failed", "tool", call.Name, "error", cerr)
		}
		return out, nil
	}

	key := toolCacheKey(call.Name, call.Args)
	if cached, ok, err := e.cache.Get(ctx, key); err == nil && ok {
		return string(cached), nil
	}
	out, err := tool.Run(ctx, call.Args)
	if err != nil {
		return "", err
	}
	if cerr := e.cache.Set(ctx, key, []byte(out), e.ttl); cerr != nil {
		e.logger.Warn("caching tool result failed", "tool", call.Name, "error", cerr)
	}
	return out, nil
}

// toolCacheKey builds a stable key from the tool name and its arguments.
// Argument keys are sorted so equivalent calls hit the same entry.
func toolCacheKey(name string, args map[string]any) string {
	if len(args) == 0 {
		return "tool:" + name
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("tool:")
	b.WriteString(name)
	for _, k := range keys {
		v, err := json.Marshal(args[k])
		if err != nil {
			v = []byte(fmt.Sprintf("%v", args[k]))
		}
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.Write(v)
	}
	return b.String()
}
