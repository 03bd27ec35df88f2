// imgtool inspects and stamps firmware images on the host.
//
//	imgtool info   [--layout NAME | --layout-file F] [--boot] IMAGE
//	imgtool stamp  [--version N] [--id S] [--spec F] [--ignore-crc --dev] [-o OUT] IMAGE
//	imgtool verify IMAGE
//	imgtool monitor --port DEV [--baud N]
//
// stamp writes the header the bootloader checks; verify exits non-zero
// when the bootloader would refuse to start the image.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.bug.st/serial"

	"bootcode-go/services/imagefile"
	"bootcode-go/types"
)

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var coder interface{ ExitCode() int }
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "info":
		err = runInfo(rest, stdout)
	case "stamp":
		err = runStamp(rest, stdout)
	case "verify":
		err = runVerify(rest, stdout)
	case "monitor":
		err = runMonitor(rest, stdout)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: imgtool <command> [flags]

commands:
  info     decode the header of an image
  stamp    write the header (and CRC) into an image
  verify   check an image the way the bootloader does
  monitor  print the bootloader's diagnostic UART
`)
}

// imageFlags are shared by the commands that open an image.
type imageFlags struct {
	layout     string
	layoutFile string
	boot       bool
	base       uint32
}

func (f *imageFlags) add(fs *pflag.FlagSet) {
	fs.StringVar(&f.layout, "layout", types.STM32F0.Name, "built-in layout name (stm32f0, rp2040)")
	fs.StringVar(&f.layoutFile, "layout-file", "", "YAML layout, overrides --layout")
	fs.BoolVar(&f.boot, "boot", false, "image is a bootloader (BootInfo) rather than an application")
	fs.Uint32Var(&f.base, "base", 0, "load address of a bootloader image (default: flash start)")
}

func (f *imageFlags) open(fs *pflag.FlagSet) (*imagefile.File, string, error) {
	if fs.NArg() != 1 {
		return nil, "", errors.New("expected one image file")
	}
	path := fs.Arg(0)
	var l types.Layout
	var err error
	if f.layoutFile != "" {
		l, err = imagefile.LoadLayout(f.layoutFile)
	} else {
		l, err = imagefile.LayoutByName(f.layout)
	}
	if err != nil {
		return nil, "", err
	}
	kind, base := imagefile.KindAppl, f.base
	if f.boot {
		kind = imagefile.KindBoot
		if !fs.Changed("base") {
			base = imagefile.FlashBase(l)
		}
	}
	img, err := imagefile.ReadFile(path, l, kind, base)
	return img, path, err
}

func runInfo(args []string, stdout io.Writer) error {
	var img imageFlags
	fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
	img.add(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, path, err := img.open(fs)
	if err != nil {
		return err
	}
	in, err := f.Info()
	if err != nil {
		return err
	}
	printInfo(stdout, path, f, in)
	return nil
}

func printInfo(w io.Writer, path string, f *imagefile.File, in imagefile.Info) {
	fmt.Fprintf(w, "%s: %s image, layout %s, %d bytes at 0x%08x\n", path, in.Kind, f.Layout.Name, f.Len, f.Base)
	ok := "ok"
	if !in.MagicOK {
		ok = "BAD"
	}
	fmt.Fprintf(w, "  magic    0x%04x (%s)\n", in.Magic, ok)
	fmt.Fprintf(w, "  version  %d\n", in.Version)
	fmt.Fprintf(w, "  id       %q\n", in.ID)
	if in.Kind == imagefile.KindAppl {
		fmt.Fprintf(w, "  crc      0x%08x (computed 0x%08x)\n", in.CRC, in.Computed)
		if in.IgnoreCRC {
			fmt.Fprintf(w, "  WARNING  ignore_crc is set: development image, CRC not enforced\n")
		}
	}
	verdict := "bootable"
	if in.Err != nil {
		verdict = "rejected: " + in.Err.Error()
	}
	fmt.Fprintf(w, "  status   %s\n", verdict)
}

func runStamp(args []string, stdout io.Writer) error {
	var img imageFlags
	var spec imagefile.StampSpec
	var specFile, out string
	fs := pflag.NewFlagSet("stamp", pflag.ContinueOnError)
	img.add(fs)
	fs.Uint32Var(&spec.Version, "version", 0, "version field")
	fs.StringVar(&spec.ID, "id", "", "id string (max 29 bytes)")
	fs.StringVar(&specFile, "spec", "", "YAML stamp spec; flags given explicitly override it")
	fs.BoolVar(&spec.IgnoreCRC, "ignore-crc", false, "set the CRC override sentinel (needs --dev)")
	fs.BoolVar(&spec.Dev, "dev", false, "allow development-only header settings")
	fs.StringVarP(&out, "output", "o", "", "write here instead of in place")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if specFile != "" {
		s, err := imagefile.LoadStampSpec(specFile)
		if err != nil {
			return err
		}
		if !fs.Changed("version") {
			spec.Version = s.Version
		}
		if !fs.Changed("id") {
			spec.ID = s.ID
		}
		if !fs.Changed("ignore-crc") {
			spec.IgnoreCRC = s.IgnoreCRC
		}
	}
	f, path, err := img.open(fs)
	if err != nil {
		return err
	}
	in, err := f.Stamp(spec)
	if err != nil {
		return fmt.Errorf("stamping %s: %w", path, err)
	}
	if out == "" {
		out = path
	}
	if err := f.WriteFile(out); err != nil {
		return err
	}
	printInfo(stdout, out, f, in)
	return nil
}

func runVerify(args []string, stdout io.Writer) error {
	var img imageFlags
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	img.add(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, path, err := img.open(fs)
	if err != nil {
		return err
	}
	if err := f.Verify(); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("%s: %w", path, err)}
	}
	fmt.Fprintf(stdout, "%s: ok\n", path)
	return nil
}

func runMonitor(args []string, stdout io.Writer) error {
	var port string
	var baud int
	fs := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
	fs.StringVar(&port, "port", "", "serial device of the diagnostic UART")
	fs.IntVar(&baud, "baud", 115200, "baud rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if port == "" {
		ports, err := serial.GetPortsList()
		if err == nil && len(ports) > 0 {
			return fmt.Errorf("--port is required (found: %v)", ports)
		}
		return errors.New("--port is required")
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	})
	if err != nil {
		return fmt.Errorf("opening %s: %w", port, err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		p.Close()
	}()
	_, err = io.Copy(stdout, p)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
