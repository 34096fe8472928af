// Package regfile parses OV7670 register list files.
//
// A register list is the host-side form of the init tables that sensor
// drivers ship as C arrays: ordered (register, value) pairs applied one
// after another. Files are plain text, one pair per line:
//
//	# QVGA RGB565
//	12 80     // reset
//	{0x12, 0x14},
//	0x40 0xD0
//	00 00     # end of list
//
// The parsed slice feeds camera.WriteRegisters:
//
//	regs, err := regfile.Parse("qvga.regs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cam.WriteRegisters(ctx, regs); err != nil {
//	    log.Fatal(err)
//	}
package regfile
