package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/platformcore/ecs/system"
)

const stickDeadzone = 0.3

// keyboardInput samples keyboard and the first standard gamepad once per
// frame tick.
type keyboardInput struct{}

func (keyboardInput) Sample() system.InputFrame {
	var f system.InputFrame

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		f.MoveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		f.MoveX += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		f.MoveY += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		f.MoveY -= 1
	}

	f.JumpPressed = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	f.JumpHeld = ebiten.IsKeyPressed(ebiten.KeySpace)
	f.RunHeld = ebiten.IsKeyPressed(ebiten.KeyShiftLeft)
	f.CrouchHeld = ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyControlLeft)
	f.DashPressed = inpututil.IsKeyJustPressed(ebiten.KeyX)
	f.UpPressed = inpututil.IsKeyJustPressed(ebiten.KeyW) || inpututil.IsKeyJustPressed(ebiten.KeyUp)

	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return f
	}
	gid := ids[0]
	if !ebiten.IsStandardGamepadLayoutAvailable(gid) {
		return f
	}

	leftX := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
	if leftX < -stickDeadzone {
		f.MoveX = -1
	} else if leftX > stickDeadzone {
		f.MoveX = 1
	}
	// Stick up is negative on the standard layout.
	leftY := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
	if leftY > stickDeadzone {
		f.MoveY = -1
		f.CrouchHeld = true
	} else if leftY < -stickDeadzone {
		f.MoveY = 1
	}

	f.JumpPressed = f.JumpPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightBottom)
	f.JumpHeld = f.JumpHeld || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightBottom)
	f.DashPressed = f.DashPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightLeft)
	f.RunHeld = f.RunHeld || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonFrontBottomRight)
	f.UpPressed = f.UpPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonLeftTop)
	return f
}
