package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rv32mcu/rv32mcu/pkg/loader"
	"github.com/rv32mcu/rv32mcu/pkg/platform"
)

func main() {
	log.SetFlags(0)
	debug := flag.Bool("d", false, "enable interactive single-step debugging")
	steps := flag.Uint64("c", 1_000_000, "number of steps to run")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: emulate [-d] [-c N] <elf-file>")
	}
	path := flag.Arg(0)

	fp, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer fp.Close()

	p := platform.New()
	entry, err := loader.LoadELF(fp, p)
	if err != nil {
		log.Fatal(err)
	}
	p.SetPC(entry)

	for i := uint64(0); i < *steps; i++ {
		if *debug {
			log.Printf("emulate: pc=%#x mcycle=%d minstret=%d", p.PC(), p.MCycle(), p.MInstret())
			log.Printf("emulate: paused...")
			fmt.Scanln()
		}
		p.Step()
		if out := p.FlushUART(); out != "" {
			fmt.Print(out)
		}
	}
}
