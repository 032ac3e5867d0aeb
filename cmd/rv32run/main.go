// Command rv32run loads a flat RV32 memory image and runs it to
// completion (EBREAK, an unhandled ECALL, or a step budget) on the
// interpreter core in pkg/hart.
//
// It intentionally does not parse ELF: the loader copies a raw binary
// straight into guest memory at a configurable load address, the way
// the reference VM's LoadBytecode function copies a flat instruction
// stream into vm.M. A host that needs ELF support layers it on top of
// this command's image-loading contract rather than this command
// growing one.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bassosimone/rv32emu/internal/config"
	"github.com/bassosimone/rv32emu/pkg/decode"
	"github.com/bassosimone/rv32emu/pkg/disasm"
	"github.com/bassosimone/rv32emu/pkg/hart"
	"github.com/bassosimone/rv32emu/pkg/hostio"
	"github.com/bassosimone/rv32emu/pkg/hostio/console"
	"github.com/bassosimone/rv32emu/pkg/jitcore"
)

var (
	configPath string
	imagePath  string
	loadAddr   uint32
	entryPoint uint32
	maxSteps   int
	trace      bool
	useCache   bool
)

func main() {
	root := &cobra.Command{
		Use:   "rv32run",
		Short: "Run a flat RV32 memory image on the interpreter core",
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "", "machine configuration (TOML); flags below override it")
	root.Flags().StringVar(&imagePath, "image", "", "flat binary memory image to load")
	root.Flags().Uint32Var(&loadAddr, "load-address", 0, "guest address to load the image at")
	root.Flags().Uint32Var(&entryPoint, "entry", 0, "initial program counter")
	root.Flags().IntVar(&maxSteps, "max-steps", 100_000_000, "instruction budget before giving up")
	root.Flags().BoolVar(&trace, "trace", false, "log each instruction before it executes (with --block-cache, only the first of each block)")
	root.Flags().BoolVar(&useCache, "block-cache", false, "use the block-translation cache for instruction fetch/decode")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("rv32run: constructing logger: %w", err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	machine := config.DefaultMachine()
	if configPath != "" {
		machine, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	if imagePath != "" {
		machine.ImagePath = imagePath
	}
	if loadAddr != 0 {
		machine.LoadAddress = loadAddr
	}
	if entryPoint != 0 {
		machine.EntryPoint = entryPoint
	}
	if machine.ImagePath == "" {
		return fmt.Errorf("rv32run: no image given (--image or config image_path)")
	}

	ext := decode.Extensions{
		M: machine.Extensions.M, A: machine.Extensions.A, F: machine.Extensions.F,
		C: machine.Extensions.C, Zicsr: machine.Extensions.Zicsr, Zifencei: machine.Extensions.Zifencei,
	}

	fm := hostio.NewFlatMemory(nil, nil)
	if err := loadImage(fm, machine.ImagePath, machine.LoadAddress); err != nil {
		return err
	}

	var con *console.Console
	if machine.Console == "raw" {
		con, err = console.Open()
		if err != nil {
			return fmt.Errorf("rv32run: opening console: %w", err)
		}
		defer con.Close()
	}

	halted := false
	fm.ECall = func() { onECall(logger, con, &halted) }
	fm.EBreak = func() { halted = true }

	h := hart.New(fm, nil, ext)
	if err := h.SetPC(machine.EntryPoint); err != nil {
		return fmt.Errorf("rv32run: %w", err)
	}

	var cache *jitcore.BlockMap
	if useCache {
		cache = jitcore.NewBlockMap(10)
		if machine.CachePath != "" {
			if err := cache.LoadFile(machine.CachePath, ext); err != nil {
				logger.Warn("could not load block cache, starting cold", zap.Error(err))
			}
		}
	}

	logger.Info("starting run",
		zap.String("image", machine.ImagePath),
		zap.Uint32("entry", machine.EntryPoint),
		zap.Bool("block_cache", useCache))

	steps := 0
	var predicted *jitcore.Block
	for steps < maxSteps && !halted && !h.HasHalted() {
		if trace {
			pc := h.GetPC()
			word := fm.MemIfetch(pc)
			text, _ := disasm.Instruction(pc, word, ext)
			logger.Info("step", zap.Uint32("pc", pc), zap.String("insn", text))
		}
		if cache != nil {
			block := jitcore.FindOrTranslate(cache, fm, ext, h.GetPC(), predicted)
			steps += h.StepBlock(block)
			predicted = block
			continue
		}
		h.Step(1)
		steps++
	}

	if useCache && machine.CachePath != "" {
		if err := cache.SaveFile(machine.CachePath); err != nil {
			logger.Warn("could not persist block cache", zap.Error(err))
		}
	}

	logger.Info("run finished", zap.Int("steps", steps), zap.Bool("halted", halted || h.HasHalted()))
	return nil
}

func onECall(logger *zap.Logger, con *console.Console, halted *bool) {
	if con == nil {
		logger.Warn("ecall with no console backend configured; halting")
		*halted = true
		return
	}
	if _, err := con.Poll(); err != nil {
		logger.Info("console detached, halting", zap.Error(err))
		*halted = true
	}
}

func loadImage(fm *hostio.FlatMemory, path string, loadAddress uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rv32run: reading image: %w", err)
	}
	fm.Mem.WriteBytes(loadAddress, data, len(data))
	return nil
}
