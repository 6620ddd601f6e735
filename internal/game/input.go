package game

import "github.com/go-gl/mathgl/mgl32"

// Input - состояние управления за один кадр
type Input struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
	Primary  bool       // Левая кнопка мыши удерживается
	Escape   bool       // Escape нажат в этом кадре
	Look     mgl32.Vec2 // Смещение мыши в пикселях
}
