package audio

import (
	"fmt"
	"sync"
)

// Cue - короткий звуковой сигнал игрового события
type Cue uint8

const (
	CueHit   Cue = iota // Удар лучом по врагу
	CueScore            // Подобран шар
	CueDeath            // Касание врага
)

func (c Cue) String() string {
	switch c {
	case CueHit:
		return "hit"
	case CueScore:
		return "score"
	case CueDeath:
		return "death"
	default:
		return fmt.Sprintf("cue_%d", int(c))
	}
}

// Player проигрывает сигналы в режиме "выстрелил и забыл"
type Player interface {
	Play(cue Cue, volume float64)
}

// MusicPlayer дополнительно управляет громкостью фоновой мелодии
type MusicPlayer interface {
	Player
	SetMusicVolume(volume float64)
}

// VolumeScalar переводит уровень громкости 0..10 в множитель 0..1
func VolumeScalar(level int) float64 {
	level = max(0, min(level, 10))
	return float64(level) * 0.1
}

// NopPlayer ничего не воспроизводит
type NopPlayer struct{}

func (NopPlayer) Play(Cue, float64) {}

// Played - запись о воспроизведенном сигнале
type Played struct {
	Cue    Cue
	Volume float64
}

// Recorder запоминает сигналы вместо воспроизведения
type Recorder struct {
	mu     sync.Mutex
	played []Played
	music  []float64
}

// Play записывает сигнал
func (r *Recorder) Play(cue Cue, volume float64) {
	r.mu.Lock()
	r.played = append(r.played, Played{Cue: cue, Volume: volume})
	r.mu.Unlock()
}

// Played возвращает копию записанных сигналов
func (r *Recorder) Played() []Played {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Played, len(r.played))
	copy(out, r.played)
	return out
}

// Count возвращает количество записанных сигналов данного типа
func (r *Recorder) Count(cue Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.played {
		if p.Cue == cue {
			n++
		}
	}
	return n
}

// SetMusicVolume записывает изменение громкости мелодии
func (r *Recorder) SetMusicVolume(volume float64) {
	r.mu.Lock()
	r.music = append(r.music, volume)
	r.mu.Unlock()
}

// MusicVolumes возвращает записанные значения громкости мелодии
func (r *Recorder) MusicVolumes() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.music...)
}

// Reset очищает запись
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.played = nil
	r.music = nil
	r.mu.Unlock()
}

var (
	_ MusicPlayer = (*BeepPlayer)(nil)
	_ MusicPlayer = (*Recorder)(nil)
)
