package main

import "time"

// fixedClock переводит реальное время в целое число кадров фиксированной длины.
// Отставание больше maxFrames кадров отбрасывается.
type fixedClock struct {
	step      time.Duration
	maxFrames int
	acc       time.Duration
}

func newFixedClock(step time.Duration, maxFrames int) *fixedClock {
	return &fixedClock{step: step, maxFrames: max(1, maxFrames)}
}

// Advance учитывает elapsed и возвращает число кадров к выполнению и отброшенное время
func (c *fixedClock) Advance(elapsed time.Duration) (frames int, dropped time.Duration) {
	if elapsed > 0 {
		c.acc += elapsed
	}
	frames = int(c.acc / c.step)
	if frames > c.maxFrames {
		dropped = c.acc - time.Duration(c.maxFrames)*c.step
		frames = c.maxFrames
		c.acc = 0
		return frames, dropped
	}
	c.acc -= time.Duration(frames) * c.step
	return frames, 0
}

// Seconds возвращает длину кадра в секундах
func (c *fixedClock) Seconds() float32 {
	return float32(c.step.Seconds())
}
