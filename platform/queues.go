package platform

// Per-device bookkeeping of on-device command queues: how many exist and
// which one is the default. The registry does not create queues; callers
// check CanCreateDeviceQueue, create the queue against the device, then
// record it here.

import "fmt"

type deviceQueueInfo struct {
	queueCount   int
	defaultQueue DeviceQueue
}

// queueInfoLocked returns the registry entry for dev, creating it on first
// access. Callers must hold queuesMu.
func (c *Context) queueInfoLocked(dev Device) *deviceQueueInfo {
	info, ok := c.deviceQueues[dev]
	if !ok {
		info = &deviceQueueInfo{}
		c.deviceQueues[dev] = info
	}
	return info
}

// CanCreateDeviceQueue reports whether another on-device queue can be
// created for dev, i.e. whether the current count is below the device's
// advertised maximum.
func (c *Context) CanCreateDeviceQueue(dev Device) bool {
	c.queuesMu.Lock()
	defer c.queuesMu.Unlock()
	return c.queueInfoLocked(dev).queueCount < dev.Info().MaxOnDeviceQueues
}

// AddDeviceQueue records a newly created on-device queue. The count is
// incremented unconditionally: callers must have validated
// CanCreateDeviceQueue first. When asDefault is set the queue becomes the
// device's default, replacing any previous one.
func (c *Context) AddDeviceQueue(dev Device, queue DeviceQueue, asDefault bool) {
	c.queuesMu.Lock()
	defer c.queuesMu.Unlock()
	info := c.queueInfoLocked(dev)
	info.queueCount++
	if asDefault {
		info.defaultQueue = queue
	}
}

// RemoveDeviceQueue records the destruction of an on-device queue. Removing
// a queue from a device with no registered queues is a usage-contract
// violation and panics. If queue was the device's default, the default is
// cleared, not reassigned.
func (c *Context) RemoveDeviceQueue(dev Device, queue DeviceQueue) {
	c.queuesMu.Lock()
	defer c.queuesMu.Unlock()
	info := c.queueInfoLocked(dev)
	if info.queueCount == 0 {
		panic(fmt.Sprintf("RemoveDeviceQueue: no queues registered for device in context %s", c.id))
	}
	info.queueCount--
	if info.defaultQueue == queue {
		info.defaultQueue = nil
	}
}

// DefaultDeviceQueue returns the device's default on-device queue, or nil
// when none is recorded.
func (c *Context) DefaultDeviceQueue(dev Device) DeviceQueue {
	c.queuesMu.Lock()
	defer c.queuesMu.Unlock()
	if info, ok := c.deviceQueues[dev]; ok {
		return info.defaultQueue
	}
	return nil
}
