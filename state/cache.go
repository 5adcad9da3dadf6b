// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/qianbin/directcache"

	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/metrics"
)

var logger = log.WithContext("pkg", "state")

const (
	storageCacheBytes   = 4 * 1024 * 1024
	balanceCacheEntries = 4096
	statsLogInterval    = 20 * time.Second
)

var metricCacheHitMiss = metrics.LazyLoadCounterVec("state_cache_count", []string{"type", "event"})

// readCache holds what was last read from or committed to the store.
// Storage blobs live in a byte cache, decoded balances in an LRU.
type readCache struct {
	blobs    *directcache.Cache
	balances *lru.Cache

	blobStats    cacheStats
	balanceStats cacheStats
	lastLogTime  atomic.Int64
}

func newReadCache() *readCache {
	balances, err := lru.New(balanceCacheEntries)
	if err != nil {
		panic(err)
	}
	c := &readCache{
		blobs:    directcache.New(storageCacheBytes),
		balances: balances,
	}
	c.lastLogTime.Store(time.Now().UnixNano())
	return c
}

// getBlob returns the cached storage blob of dbKey. An absent value is cached
// as an empty blob, so ok is true for it.
func (c *readCache) getBlob(dbKey []byte) (blob []byte, ok bool) {
	ok = c.blobs.AdvGet(dbKey, func(val []byte) {
		// first byte marks the entry, the blob may be empty
		blob = slices.Clone(val[1:])
	}, false)
	if ok {
		c.hit(&c.blobStats, "storage")
	} else {
		c.miss(&c.blobStats, "storage")
	}
	return
}

func (c *readCache) setBlob(dbKey, blob []byte) {
	_ = c.blobs.AdvSet(dbKey, len(blob)+1, func(val []byte) {
		val[0] = 1
		copy(val[1:], blob)
	})
}

func (c *readCache) getBalance(addr lucky.Address) (*uint256.Int, bool) {
	if v, ok := c.balances.Get(addr); ok {
		c.hit(&c.balanceStats, "balance")
		return new(uint256.Int).Set(v.(*uint256.Int)), true
	}
	c.miss(&c.balanceStats, "balance")
	return nil, false
}

func (c *readCache) setBalance(addr lucky.Address, bal *uint256.Int) {
	c.balances.Add(addr, new(uint256.Int).Set(bal))
}

func (c *readCache) hit(stats *cacheStats, typ string) {
	metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": typ, "event": "hit"})
	if stats.Hit()%2000 == 0 {
		c.log()
	}
}

func (c *readCache) miss(stats *cacheStats, typ string) {
	metricCacheHitMiss().AddWithLabel(1, map[string]string{"type": typ, "event": "miss"})
	stats.Miss()
}

func (c *readCache) log() {
	now := time.Now().UnixNano()
	last := c.lastLogTime.Swap(now)

	if now-last > int64(statsLogInterval) {
		shouldBlob, hitBlob, missBlob := c.blobStats.Stats()
		shouldBalance, hitBalance, missBalance := c.balanceStats.Stats()

		if shouldBlob || shouldBalance {
			logStats("storage cache stats", hitBlob, missBlob)
			logStats("balance cache stats", hitBalance, missBalance)
		}
	} else {
		c.lastLogTime.CompareAndSwap(now, last)
	}
}

type cacheStats struct {
	hit, miss atomic.Int64
	flag      atomic.Int32
}

func (cs *cacheStats) Hit() int64  { return cs.hit.Add(1) }
func (cs *cacheStats) Miss() int64 { return cs.miss.Add(1) }

// Stats returns hits and misses, and whether the hit rate moved since the last call.
func (cs *cacheStats) Stats() (bool, int64, int64) {
	hit := cs.hit.Load()
	miss := cs.miss.Load()
	lookups := hit + miss

	hitRate := float64(0)
	if lookups > 0 {
		hitRate = float64(hit) / float64(lookups)
	}
	flag := int32(hitRate * 1000)

	return cs.flag.Swap(flag) != flag, hit, miss
}

func logStats(msg string, hit, miss int64) {
	lookups := hit + miss
	var str string
	if lookups > 0 {
		str = fmt.Sprintf("%.3f", float64(hit)/float64(lookups))
	} else {
		str = "n/a"
	}

	logger.Debug(msg,
		"lookups", lookups,
		"hitrate", str,
	)
}
