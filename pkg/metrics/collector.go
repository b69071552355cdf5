package metrics

import (
	"os"
	"time"
)

// Collector periodically samples metrics that aren't naturally observed at
// a call site, such as on-disk database size.
type Collector struct {
	dbPath string
	stopCh chan struct{}
}

// NewCollector creates a collector for the ledger database at dbPath.
func NewCollector(dbPath string) *Collector {
	return &Collector{
		dbPath: dbPath,
		stopCh: make(chan struct{}),
	}
}

// Start begins periodic collection.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	info, err := os.Stat(c.dbPath)
	if err != nil {
		return
	}
	DatabaseSizeBytes.Set(float64(info.Size()))
}
