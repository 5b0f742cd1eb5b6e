package main

import (
	"flag"
	"fmt"
	"iter"
	"log"
	"os"
	"sync"

	"github.com/wolfarch/riscv-llvm/asm"
	"github.com/wolfarch/riscv-llvm/internal"
	"github.com/wolfarch/riscv-llvm/isa"
)

func main() {
	var table string
	var output string
	var verbose bool

	flag.StringVar(&table, "t", "", "description table (.star) replacing the built-in rv32i")
	flag.StringVar(&output, "o", "", "raw image output file")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("%v: no input files", os.Args[0])
	}

	tbl := isa.RV32I()
	if len(table) != 0 {
		var err error
		tbl, err = isa.LoadFile(table)
		if err != nil {
			log.Fatalf("%v: %v", table, err)
		}
	}

	as := &asm.Assembler{Table: tbl, Verbose: verbose}

	// Each unit owns its symbol table and diagnostics, so the input
	// files assemble in parallel against the shared table.
	units := make([]*asm.Unit, flag.NArg())
	var wg sync.WaitGroup
	for n, name := range flag.Args() {
		wg.Add(1)
		go func() {
			defer wg.Done()

			inf, err := os.Open(name)
			if err != nil {
				log.Fatalf("%v: %v", name, err)
			}
			defer inf.Close()

			unit, err := as.Assemble(name, inf)
			if err != nil {
				log.Fatalf("%v: %v", name, err)
			}
			units[n] = unit
		}()
	}
	wg.Wait()

	failed := false
	for _, unit := range units {
		for _, diag := range unit.Diags {
			fmt.Fprintf(os.Stderr, "%v:%v\n", unit.Name, diag)
		}
		failed = failed || unit.Failed()
	}
	if failed {
		os.Exit(1)
	}

	if len(output) != 0 {
		relocs := make([]iter.Seq[asm.RelocationRecord], len(units))
		for n, unit := range units {
			relocs[n] = unit.Relocs()
		}

		var image []byte
		for _, unit := range units {
			image = append(image, unit.Binary()...)
		}
		if err := os.WriteFile(output, image, 0o644); err != nil {
			log.Fatalf("%v: %v", output, err)
		}

		for rec := range internal.ConcatSeq(relocs...) {
			fmt.Printf("reloc %#06x %v %v%+d\n", rec.Offset, rec.Kind, rec.Symbol, rec.Addend)
		}
		return
	}

	for _, unit := range units {
		for _, inst := range unit.Instructions {
			fmt.Printf("%v:%v: %#06x %08x\n", unit.Name, inst.Line, inst.Offset, inst.Word)
			for _, rec := range inst.Relocs {
				fmt.Printf("%v:%v: %#06x reloc %v %v%+d\n",
					unit.Name, inst.Line, rec.Offset, rec.Kind, rec.Symbol, rec.Addend)
			}
		}
	}
}
