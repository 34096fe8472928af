package camera

import (
	"context"
	"fmt"

	"github.com/moffa90/go-ov7670/protocol"
)

// SetBit sets one bit of a register with a read-modify-write sequence.
//
// The read always goes to the device; the write-back carries the live value
// with the bit OR-ed in. Both round trips run under the camera lock.
func (c *Camera) SetBit(ctx context.Context, reg, bit int) error {
	return c.modifyRegister(ctx, reg, bit, func(v byte) byte {
		return v | 1<<uint(bit)
	})
}

// ClearBit clears one bit of a register with a read-modify-write sequence.
func (c *Camera) ClearBit(ctx context.Context, reg, bit int) error {
	return c.modifyRegister(ctx, reg, bit, func(v byte) byte {
		return v & (0xFF ^ 1<<uint(bit))
	})
}

// GetBit reads a register and returns the requested bit as 0 or 1.
func (c *Camera) GetBit(ctx context.Context, reg, bit int) (int, error) {
	cmd, err := protocol.BuildRegReadCmd(reg)
	if err != nil {
		return 0, err
	}
	if err := protocol.CheckBit(bit); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.readRegister(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return int(value>>uint(bit)) & 1, nil
}

func (c *Camera) modifyRegister(ctx context.Context, reg, bit int, modify func(byte) byte) error {
	readCmd, err := protocol.BuildRegReadCmd(reg)
	if err != nil {
		return err
	}
	if err := protocol.CheckBit(bit); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.readRegister(ctx, readCmd)
	if err != nil {
		return err
	}

	updated := modify(value)
	writeCmd, err := protocol.BuildRegWriteCmd(reg, int(updated))
	if err != nil {
		return err
	}
	if err := c.sendCommand(ctx, writeCmd); err != nil {
		return fmt.Errorf("write register 0x%02X: %w", reg, err)
	}

	c.logDebug("register modified",
		"reg", fmt.Sprintf("0x%02X", reg),
		"bit", bit,
		"old", fmt.Sprintf("0x%02X", value),
		"new", fmt.Sprintf("0x%02X", updated),
	)
	return nil
}

// SetHFlip enables or disables horizontal mirroring (MVFP bit 5).
func (c *Camera) SetHFlip(ctx context.Context, on bool) error {
	if on {
		return c.SetBit(ctx, protocol.RegMVFP, protocol.MVFPMirrorBit)
	}
	return c.ClearBit(ctx, protocol.RegMVFP, protocol.MVFPMirrorBit)
}

// SetVFlip enables or disables vertical flipping (MVFP bit 4).
func (c *Camera) SetVFlip(ctx context.Context, on bool) error {
	if on {
		return c.SetBit(ctx, protocol.RegMVFP, protocol.MVFPVFlipBit)
	}
	return c.ClearBit(ctx, protocol.RegMVFP, protocol.MVFPVFlipBit)
}

// WriteRegisters writes a register list in order. All frames are built
// before the first write, so the list is sent whole or not at all if an
// entry is invalid. A transport failure midway leaves earlier writes applied.
func (c *Camera) WriteRegisters(ctx context.Context, regs []protocol.RegisterValue) error {
	frames, err := protocol.BuildRegWriteListCmds(regs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, frame := range frames {
		if err := c.sendCommand(ctx, frame); err != nil {
			return fmt.Errorf("register %d of %d (%s): %w", i+1, len(frames), regs[i], err)
		}
	}

	c.logDebug("register list written", "count", len(frames))
	return nil
}

// ReadSensorID reads the product and manufacturer ID registers.
//
// Example:
//
//	id, err := cam.ReadSensorID(ctx)
//	if err == nil && !id.IsOV7670() {
//	    log.Printf("unexpected sensor: %s", id)
//	}
func (c *Camera) ReadSensorID(ctx context.Context) (*protocol.SensorID, error) {
	regs := []int{protocol.RegPID, protocol.RegVER, protocol.RegMIDH, protocol.RegMIDL}
	values := make([]byte, len(regs))

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, reg := range regs {
		cmd, err := protocol.BuildRegReadCmd(reg)
		if err != nil {
			return nil, err
		}
		v, err := c.readRegister(ctx, cmd)
		if err != nil {
			return nil, fmt.Errorf("read sensor ID: %w", err)
		}
		values[i] = v
	}

	id := &protocol.SensorID{
		ProductID:      uint16(values[0])<<8 | uint16(values[1]),
		ManufacturerID: uint16(values[2])<<8 | uint16(values[3]),
	}
	c.logInfo("sensor identified",
		"product_id", fmt.Sprintf("0x%04X", id.ProductID),
		"manufacturer_id", fmt.Sprintf("0x%04X", id.ManufacturerID),
		"ov7670", id.IsOV7670(),
	)
	return id, nil
}
