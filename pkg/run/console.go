/*
   OqtaDisk - Apple II Disk II emulator
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaDisk.

   OqtaDisk is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaDisk is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaDisk. If not, see <http://www.gnu.org/licenses/>.
*/

package run

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/bus"
	"github.com/xelalexv/oqtadisk/pkg/control"
	"github.com/xelalexv/oqtadisk/pkg/daemon"
	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

const (
	// returned by a console command to end the shell
	exitShell = 999
	// emulated cycles each register access takes
	accessCycles = 4
	// soft switch offsets
	switchMotorOff = 0x8
	switchMotorOn  = 0x9
	switchDrive1   = 0xa
	switchQ6L      = 0xc
)

//
type consoleCommand struct {
	Name        string
	Description string
	MinArgs     int
	MaxArgs     int
	Code        func(args []string) int
	Text        []string
}

/*
	console is a Disk II controller living on its own I/O page, operated by
	typed commands. Each register access advances the emulated clock by a few
	cycles, the tick command advances it arbitrarily.
*/
type console struct {
	out      io.Writer
	page     *bus.IOPage
	ctrl     *drive.Controller
	cycles   uint64
	media    [2]*format.MediaDescriptor
	commands map[string]*consoleCommand
}

//
func newConsole(slot int, rom []byte, out io.Writer) (*console, error) {

	c := &console{out: out, page: bus.NewIOPage()}
	c.ctrl = drive.NewController(slot, func() uint64 { return c.cycles })

	if err := c.ctrl.SetROM(rom); err != nil {
		return nil, err
	}
	if err := c.ctrl.Install(c.page); err != nil {
		return nil, err
	}

	c.commands = map[string]*consoleCommand{}
	for _, cmd := range []*consoleCommand{
		{"mount", "mount disk image file", 1, 2, c.mount,
			[]string{"mount {file} [{drive}]"}},
		{"unmount", "unmount disk, writing back changes", 0, 2, c.unmount,
			[]string{"unmount [{drive}] [force]",
				"modified disks are written back to their file"}},
		{"save", "save disk to file", 1, 2, c.save,
			[]string{"save {file} [{drive}]",
				"format is determined by file extension"}},
		{"protect", "set write protection", 0, 2, c.protect,
			[]string{"protect [{drive}] [on|off]"}},
		{"status", "show drive status", 0, 0, c.status, nil},
		{"sw", "access soft switch", 1, 2, c.softSwitch,
			[]string{"sw {offset} [{value}]",
				"reads soft switch at hex offset 0-f of the slot, or writes",
				"hex value to it"}},
		{"peek", "read from I/O page or slot ROM", 1, 1, c.peek,
			[]string{"peek {address}", "address in hex, e.g. c0ec"}},
		{"poke", "write to I/O page", 2, 2, c.poke,
			[]string{"poke {address} {value}", "address & value in hex"}},
		{"motor", "switch motor on or off", 1, 1, c.motor,
			[]string{"motor on|off",
				"switching off takes effect after 1,000,000 cycles"}},
		{"select", "select drive", 1, 1, c.selectDrive,
			[]string{"select {drive}"}},
		{"seek", "move head of selected drive", 1, 1, c.seek,
			[]string{"seek {track}", "steps the head to track 0-34"}},
		{"nibbles", "read nibbles from selected drive", 0, 1, c.nibbles,
			[]string{"nibbles [{count}]", "count defaults to 16"}},
		{"tick", "advance emulated clock", 1, 1, c.tick,
			[]string{"tick {cycles}"}},
		{"dump", "hex dump of disk track", 0, 2, c.dump,
			[]string{"dump [{drive}] [{track}]",
				"dumps all tracks when no track is given"}},
		{"ls", "list disk contents", 0, 1, c.list,
			[]string{"ls [{drive}]"}},
		{"help", "show help", 0, 1, c.help,
			[]string{"help [{command}]"}},
		{"quit", "unmount all disks & leave shell", 0, 0, c.quit, nil},
	} {
		c.commands[cmd.Name] = cmd
	}
	c.commands["exit"] = c.commands["quit"]

	return c, nil
}

//
func (c *console) prompt() string {
	return fmt.Sprintf("S%d,D%d> ", c.ctrl.Slot(), c.ctrl.SelectedDrive()+1)
}

//
func (c *console) names() []string {
	ret := make([]string, 0, len(c.commands))
	for k := range c.commands {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// process runs one command line. It returns exitShell when the shell should
// end, -1 on error, and 0 otherwise.
func (c *console) process(line string) int {

	verb, args := splitLine(strings.TrimSpace(line))
	if verb == "" {
		return 0
	}

	verb = strings.ToLower(verb)
	cmd, ok := c.commands[verb]
	if !ok {
		fmt.Fprintf(c.out, "unrecognized command: %s\n", verb)
		return -1
	}

	if len(args) < cmd.MinArgs {
		fmt.Fprintf(c.out, "%s expects at least %d arguments\n",
			verb, cmd.MinArgs)
		return -1
	}
	if len(args) > cmd.MaxArgs {
		fmt.Fprintf(c.out, "%s expects at most %d arguments\n",
			verb, cmd.MaxArgs)
		return -1
	}

	return cmd.Code(args)
}

// splitLine splits line at blanks, honoring double quotes and escaped blanks.
func splitLine(line string) (string, []string) {

	var out []string
	var chunk strings.Builder
	var quoted, escaped bool

	add := func() {
		if chunk.Len() > 0 {
			out = append(out, chunk.String())
			chunk.Reset()
		}
	}

	for _, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted
			add()
		case ch == ' ':
			if quoted || escaped {
				chunk.WriteRune(ch)
			} else {
				add()
			}
			escaped = false
		case ch == '\\' && !quoted:
			escaped = true
		default:
			chunk.WriteRune(ch)
		}
	}
	add()

	if len(out) == 0 {
		return "", out
	}
	return out[0], out[1:]
}

//
func (c *console) fail(err error) int {
	fmt.Fprintf(c.out, "error: %v\n", err)
	return -1
}

//
func (c *console) read(addr uint16) byte {
	c.cycles += accessCycles
	return c.page.Read(addr)
}

//
func (c *console) write(addr uint16, val byte) {
	c.cycles += accessCycles
	c.page.Write(addr, val)
}

//
func (c *console) sw(offset int) byte {
	return c.read(bus.SlotIOBase(c.ctrl.Slot()) + uint16(offset))
}

// driveArg returns the 0-based drive index given by args[ix], or the
// selected drive if there is no such argument.
func (c *console) driveArg(args []string, ix int) (int, error) {
	if len(args) <= ix {
		return c.ctrl.SelectedDrive(), nil
	}
	d, err := strconv.Atoi(args[ix])
	if err != nil {
		return -1, fmt.Errorf("invalid drive: %s", args[ix])
	}
	if err := validateDrive(d); err != nil {
		return -1, err
	}
	return d - 1, nil
}

//
func (c *console) mountedDisk(ix int) (*nibble.Disk, error) {
	d := c.ctrl.Drive(ix)
	if !d.IsMounted() {
		return nil, fmt.Errorf("drive %d is empty", ix+1)
	}
	return d.Disk(), nil
}

//
func parseHex(s string, max int) (int, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(
		strings.TrimPrefix(strings.ToLower(s), "0x"), "$"), 16, 16)
	if err != nil || int(v) > max {
		return -1, fmt.Errorf("invalid value: %s", s)
	}
	return int(v), nil
}

//
func (c *console) mount(args []string) int {

	ix, err := c.driveArg(args, 1)
	if err != nil {
		return c.fail(err)
	}

	if c.ctrl.Drive(ix).IsMounted() {
		if r := c.unmount([]string{strconv.Itoa(ix + 1)}); r != 0 {
			return r
		}
	}

	dsk, desc, err := format.Load(args[0], base.DefaultVolume)
	if err != nil {
		return c.fail(err)
	}

	if err := c.ctrl.Mount(ix, dsk, args[0], desc.WriteProtected); err != nil {
		return c.fail(err)
	}
	c.media[ix] = desc

	fmt.Fprintf(c.out, "mounted %s in drive %d\n", args[0], ix+1)
	return 0
}

//
func (c *console) unmount(args []string) int {

	force := len(args) > 0 && args[len(args)-1] == "force"
	if force {
		args = args[:len(args)-1]
	}

	ix, err := c.driveArg(args, 0)
	if err != nil {
		return c.fail(err)
	}

	d := c.ctrl.Drive(ix)
	if !d.IsMounted() {
		return 0
	}

	if err := c.ctrl.CheckUnmount(ix, force); err != nil {
		return c.fail(err)
	}

	if desc := c.media[ix]; d.IsModified() && desc != nil {
		if desc.WriteProtected {
			fmt.Fprintf(c.out, "%s is write protected, changes lost\n",
				desc.Filename)
		} else if err := c.writeBack(d.Disk(), desc); err != nil {
			if !force {
				return c.fail(err)
			}
			log.Errorf("discarding changes to %s: %v", desc.Filename, err)
		}
	}

	if _, err := c.ctrl.Unmount(ix, true); err != nil {
		return c.fail(err)
	}
	c.media[ix] = nil

	fmt.Fprintf(c.out, "unmounted drive %d\n", ix+1)
	return 0
}

//
func (c *console) writeBack(dsk *nibble.Disk, desc *format.MediaDescriptor) error {
	err := format.Save(dsk, desc.Filename, desc.Format)
	var partial *nibble.PartialFailure
	if errors.As(err, &partial) {
		log.Warnf("%s written with damaged sectors: %v", desc.Filename, err)
		return nil
	}
	return err
}

//
func (c *console) save(args []string) int {

	ix, err := c.driveArg(args, 1)
	if err != nil {
		return c.fail(err)
	}

	dsk, err := c.mountedDisk(ix)
	if err != nil {
		return c.fail(err)
	}

	err = format.Save(dsk, args[0], getExtension(args[0]))
	var partial *nibble.PartialFailure
	if errors.As(err, &partial) {
		fmt.Fprintf(c.out, "warning: %v\n", err)
	} else if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.out, "saved drive %d to %s\n", ix+1, args[0])
	return 0
}

//
func (c *console) protect(args []string) int {

	on := true
	if len(args) > 0 {
		switch args[len(args)-1] {
		case "on":
			args = args[:len(args)-1]
		case "off":
			on = false
			args = args[:len(args)-1]
		}
	}

	ix, err := c.driveArg(args, 0)
	if err != nil {
		return c.fail(err)
	}
	if _, err := c.mountedDisk(ix); err != nil {
		return c.fail(err)
	}

	c.ctrl.Drive(ix).SetWriteProtected(on)
	return c.status(nil)
}

//
func (c *console) status(args []string) int {
	for ix := 0; ix < daemon.DriveCount; ix++ {
		fmt.Fprintf(c.out, "D%d: %s\n", ix+1, c.ctrl.Status(ix))
	}
	fmt.Fprintf(c.out, "mode: %s, cycles: %d\n", c.ctrl.Mode(), c.cycles)
	return 0
}

//
func (c *console) softSwitch(args []string) int {

	offset, err := parseHex(args[0], 0x0f)
	if err != nil {
		return c.fail(err)
	}

	addr := bus.SlotIOBase(c.ctrl.Slot()) + uint16(offset)

	if len(args) > 1 {
		val, err := parseHex(args[1], 0xff)
		if err != nil {
			return c.fail(err)
		}
		c.write(addr, byte(val))
		return 0
	}

	fmt.Fprintf(c.out, "%04x: %02x\n", addr, c.read(addr))
	return 0
}

//
func (c *console) peek(args []string) int {
	addr, err := parseHex(args[0], 0xffff)
	if err != nil {
		return c.fail(err)
	}
	if addr < bus.IOStart || bus.SlotROMEnd < addr {
		return c.fail(fmt.Errorf("address %04x outside of I/O area", addr))
	}
	fmt.Fprintf(c.out, "%04x: %02x\n", addr, c.read(uint16(addr)))
	return 0
}

//
func (c *console) poke(args []string) int {
	addr, err := parseHex(args[0], 0xffff)
	if err != nil {
		return c.fail(err)
	}
	if !c.page.Handles(uint16(addr)) {
		return c.fail(fmt.Errorf("address %04x not on I/O page", addr))
	}
	val, err := parseHex(args[1], 0xff)
	if err != nil {
		return c.fail(err)
	}
	c.write(uint16(addr), byte(val))
	return 0
}

//
func (c *console) motor(args []string) int {
	switch strings.ToLower(args[0]) {
	case "on":
		c.sw(switchMotorOn)
	case "off":
		c.sw(switchMotorOff)
	default:
		return c.fail(fmt.Errorf("motor on or off?"))
	}
	return 0
}

//
func (c *console) selectDrive(args []string) int {
	ix, err := c.driveArg(args, 0)
	if err != nil {
		return c.fail(err)
	}
	c.sw(switchDrive1 + ix)
	return 0
}

/*
	seek steps the head of the selected drive to the given track, by turning
	on the stepper phases one after the other. The phase at the current head
	position is turned on first, so that the stepper knows where it is.
*/
func (c *console) seek(args []string) int {

	track, err := strconv.Atoi(args[0])
	if err != nil || track < 0 || track >= base.TrackCount {
		return c.fail(fmt.Errorf("invalid track: %s", args[0]))
	}

	d := c.ctrl.Drive(c.ctrl.SelectedDrive())
	target := 2 * track

	c.stepPhase(d.HalfTrack() & 0x03)

	for d.HalfTrack() != target {
		dir := 1
		if target < d.HalfTrack() {
			dir = -1
		}
		before := d.HalfTrack()
		c.stepPhase((before + dir) & 0x03)
		if d.HalfTrack() == before {
			return c.fail(fmt.Errorf("head stuck at half track %d", before))
		}
	}

	fmt.Fprintf(c.out, "head at track %d\n", d.Track())
	return 0
}

//
func (c *console) stepPhase(p int) {
	c.sw(2*p + 1)
	c.sw(2 * p)
}

// nibbles polls the data latch of the selected drive until the requested
// number of complete nibbles has been read.
func (c *console) nibbles(args []string) int {

	count := 16
	if len(args) > 0 {
		var err error
		if count, err = strconv.Atoi(args[0]); err != nil || count < 1 {
			return c.fail(fmt.Errorf("invalid count: %s", args[0]))
		}
	}

	var read []string
	for polls := 16 * (count + 1); polls > 0 && len(read) < count; polls-- {
		if b := c.sw(switchQ6L); b&0x80 != 0 {
			read = append(read, fmt.Sprintf("%02x", b))
		}
	}

	if len(read) < count {
		fmt.Fprintf(c.out,
			"read %d of %d nibbles; is the motor on and a disk mounted?\n",
			len(read), count)
	}
	if len(read) > 0 {
		fmt.Fprintln(c.out, strings.Join(read, " "))
	}
	return 0
}

//
func (c *console) tick(args []string) int {
	delta, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return c.fail(fmt.Errorf("invalid cycle count: %s", args[0]))
	}
	c.cycles += delta
	return 0
}

//
func (c *console) dump(args []string) int {

	ix, err := c.driveArg(args, 0)
	if err != nil {
		return c.fail(err)
	}

	dsk, err := c.mountedDisk(ix)
	if err != nil {
		return c.fail(err)
	}

	if len(args) < 2 {
		dsk.Emit(c.out)
		return 0
	}

	t, err := strconv.Atoi(args[1])
	if err != nil || dsk.Track(t) == nil {
		return c.fail(fmt.Errorf("invalid track: %s", args[1]))
	}
	nibble.EmitTrack(c.out, dsk.Track(t), t)
	return 0
}

//
func (c *console) list(args []string) int {

	ix, err := c.driveArg(args, 0)
	if err != nil {
		return c.fail(err)
	}

	dsk, err := c.mountedDisk(ix)
	if err != nil {
		return c.fail(err)
	}

	control.ListDisk(dsk, c.out)
	return 0
}

//
func (c *console) help(args []string) int {

	if len(args) == 0 {
		for _, k := range c.names() {
			if k == "exit" {
				continue
			}
			fmt.Fprintf(c.out, "%-10s %s\n", k, c.commands[k].Description)
		}
		return 0
	}

	cmd, ok := c.commands[strings.ToLower(args[0])]
	if !ok {
		return c.fail(fmt.Errorf("no such command: %s", args[0]))
	}
	if cmd.Text == nil {
		fmt.Fprintln(c.out, cmd.Description)
	}
	for _, l := range cmd.Text {
		fmt.Fprintln(c.out, l)
	}
	return 0
}

// quit unmounts all disks before leaving, so that changes get written back
func (c *console) quit(args []string) int {
	for ix := 0; ix < daemon.DriveCount; ix++ {
		if r := c.unmount([]string{strconv.Itoa(ix + 1), "force"}); r != 0 {
			return r
		}
	}
	return exitShell
}
