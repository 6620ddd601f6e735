package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/annel0/sky-quest/internal/logging"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	// hitPlaybackSpeed - сигнал удара проигрывается замедленным вдвое
	hitPlaybackSpeed = 0.5

	// musicLevel приглушает фоновую мелодию относительно сигналов
	musicLevel = 0.2
)

// tone описывает синтезируемый сигнал
type tone struct {
	freq     float64
	duration time.Duration
}

var cueTones = map[Cue]tone{
	CueHit:   {freq: 440, duration: 120 * time.Millisecond},
	CueScore: {freq: 880, duration: 150 * time.Millisecond},
	CueDeath: {freq: 110, duration: 400 * time.Millisecond},
}

// BeepPlayer синтезирует сигналы и смешивает их в общий микшер
type BeepPlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	played      map[Cue]int
	music       *effects.Volume
}

// NewBeepPlayer создает плеер. Без Init сигналы копятся в микшере до вызова Render.
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{
		mixer:  &beep.Mixer{},
		played: make(map[Cue]int),
	}
}

// Init подключает микшер к звуковому устройству
func (p *BeepPlayer) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	logging.Info("🔊 Аудио инициализировано (%d Hz)", int(sampleRate))
	return nil
}

// Close останавливает воспроизведение
func (p *BeepPlayer) Close() {
	if p.isInitialized() {
		speaker.Clear()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Clear()
	p.music = nil
	p.initialized = false
}

// Play добавляет сигнал в микшер. volume - множитель 0..1.
func (p *BeepPlayer) Play(cue Cue, volume float64) {
	streamer, err := cueStreamer(cue, volume)
	if err != nil {
		logging.Warn("⚠️ Не удалось синтезировать сигнал %s: %v", cue, err)
		return
	}

	if p.isInitialized() {
		speaker.Lock()
		defer speaker.Unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Add(streamer)
	p.played[cue]++
	logging.Trace("🔈 Сигнал %s, громкость %.1f", cue, volume)
}

// musicTone - фоновая мелодия: основной тон и квинта
var musicTone = []float64{110, 165}

// StartMusic запускает бесконечную фоновую мелодию. Повторный вызов меняет только громкость.
func (p *BeepPlayer) StartMusic(volume float64) error {
	if p.isInitialized() {
		speaker.Lock()
		defer speaker.Unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.music != nil {
		setVolume(p.music, volume*musicLevel)
		return nil
	}

	voices := make([]beep.Streamer, 0, len(musicTone))
	for _, freq := range musicTone {
		sine, err := generators.SineTone(sampleRate, freq)
		if err != nil {
			return fmt.Errorf("music tone %.0f Hz: %w", freq, err)
		}
		voices = append(voices, sine)
	}

	p.music = &effects.Volume{Streamer: beep.Mix(voices...), Base: 2}
	setVolume(p.music, volume*musicLevel)
	p.mixer.Add(p.music)
	return nil
}

// SetMusicVolume меняет громкость фоновой мелодии
func (p *BeepPlayer) SetMusicVolume(volume float64) {
	if p.isInitialized() {
		speaker.Lock()
		defer speaker.Unlock()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.music != nil {
		setVolume(p.music, volume*musicLevel)
	}
}

// Render выдает следующие n сэмплов микшера (для работы без звукового устройства)
func (p *BeepPlayer) Render(n int) [][2]float64 {
	buf := make([][2]float64, n)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Stream(buf)
	return buf
}

// Active возвращает количество звучащих сигналов
func (p *BeepPlayer) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// PlayedCount возвращает количество запущенных сигналов данного типа
func (p *BeepPlayer) PlayedCount(cue Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[cue]
}

func (p *BeepPlayer) isInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// cueStreamer собирает цепочку: тон -> обрезка по длительности -> скорость -> громкость
func cueStreamer(cue Cue, volume float64) (beep.Streamer, error) {
	t, ok := cueTones[cue]
	if !ok {
		return nil, fmt.Errorf("unknown cue %d", int(cue))
	}

	sine, err := generators.SineTone(sampleRate, t.freq)
	if err != nil {
		return nil, fmt.Errorf("sine tone %.0f Hz: %w", t.freq, err)
	}

	var s beep.Streamer = beep.Take(sampleRate.N(t.duration), sine)
	if cue == CueHit {
		s = beep.ResampleRatio(4, hitPlaybackSpeed, s)
	}

	v := &effects.Volume{Streamer: s, Base: 2}
	setVolume(v, volume)
	return v, nil
}

func setVolume(v *effects.Volume, volume float64) {
	v.Volume = volumeToExponent(volume)
	v.Silent = volume <= 0
}

// volumeToExponent переводит линейный множитель в показатель степени для effects.Volume
func volumeToExponent(volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return math.Log2(volume)
}
