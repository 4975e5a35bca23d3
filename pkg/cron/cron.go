// Package cron provides some cron utility functions.
package cron

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// Cron wraps `cron.Cron` and tracks jobs by name.
type Cron struct {
	inner *cron.Cron

	mu  sync.Mutex
	ids map[string]cron.EntryID
}

// FuncJob is alias of `cron.FuncJob`.
type FuncJob = cron.FuncJob

// New returns a started instance of Cron.
func New() *Cron {
	c := cron.New()
	c.Start()
	return &Cron{
		inner: c,
		ids:   map[string]cron.EntryID{},
	}
}

// Jobs returns a map of job names to job.
func (c *Cron) Jobs() map[string]cron.Entry {
	c.mu.Lock()
	id2name := make(map[cron.EntryID]string, len(c.ids))
	for name, id := range c.ids {
		id2name[id] = name
	}
	c.mu.Unlock()

	ret := map[string]cron.Entry{}
	for _, entry := range c.inner.Entries() {
		if name, ok := id2name[entry.ID]; ok {
			ret[name] = entry
		}
	}
	return ret
}

// AddJob removes the job with the same name first and adds a new job.
func (c *Cron) AddJob(name, spec string, cmd FuncJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[name]; ok {
		c.inner.Remove(id)
		delete(c.ids, name)
	}
	id, err := c.inner.AddFunc(spec, cmd)
	if err != nil {
		return err
	}
	c.ids[name] = id
	return nil
}

// RemoveJob remove the job with the given name.
func (c *Cron) RemoveJob(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[name]; ok {
		c.inner.Remove(id)
		delete(c.ids, name)
	}
}

// Stop stops the scheduler. Running jobs are not interrupted.
func (c *Cron) Stop() {
	c.inner.Stop()
}
