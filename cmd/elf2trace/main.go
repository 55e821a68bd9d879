package main

import (
	"flag"
	"log"
	"os"

	"github.com/rv32mcu/rv32mcu/pkg/loader"
)

func main() {
	log.SetFlags(0)
	in := flag.String("i", "", "input ELF file")
	out := flag.String("o", "", "output trace file")
	flag.Parse()

	if *in == "" || *out == "" {
		log.Fatal("usage: elf2trace -i <elf-file> -o <trace-file>")
	}

	fp, err := os.Open(*in)
	if err != nil {
		log.Fatal(err)
	}
	defer fp.Close()

	outFp, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer outFp.Close()

	if err := loader.WriteTraceEEPROM(outFp, fp); err != nil {
		log.Fatal(err)
	}
}
