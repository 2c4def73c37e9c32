// Command binarydecoder dumps the bitstream of an armored AIS payload and
// the record decoded from it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kintel/aisdecoder/decoder"
)

func main() {
	payload := flag.String("payload", "", "Armored AIS payload (sixth field of the sentence)")
	fill := flag.Int("fill", 0, "Fill bits at the end of the payload")
	sentence := flag.String("sentence", "", "A complete single-part !AIVDM sentence, instead of -payload")
	flag.Parse()

	if *sentence != "" {
		s, err := decoder.ParseSentence(*sentence)
		if err != nil {
			fail(err)
		}
		*payload, *fill = s.Payload, s.FillBits
	}
	if *payload == "" {
		fmt.Println("Usage: binarydecoder -payload <armored> [-fill N] | -sentence <!AIVDM...>")
		os.Exit(1)
	}

	bits, err := decoder.Unarmor(*payload)
	if err != nil {
		fail(err)
	}
	if *fill < 0 || *fill > len(bits) {
		fail(fmt.Errorf("fill %d out of range for %d bits", *fill, len(bits)))
	}
	bits = bits[:len(bits)-*fill]

	head := color.New(color.Bold)
	head.Printf("Total bits: %d\n", len(bits))
	fmt.Print(dump(bits))

	br := decoder.NewBitReader(bits)
	messageID, _ := br.ReadUint(6)
	repeat, _ := br.ReadUint(2)
	mmsi, _ := br.ReadUint(30)
	head.Println("=== Header ===")
	fmt.Printf("Message ID: %d (%s)\n", messageID, nameOr(decoder.MessageName(uint8(messageID)), "unknown"))
	fmt.Printf("Repeat Indicator: %d\n", repeat)
	fmt.Printf("Source ID (MMSI): %d\n", mmsi)

	msg, err := decoder.DecodeBits(bits)
	if err != nil {
		fail(err)
	}
	out, _ := json.MarshalIndent(msg, "", "  ")
	head.Println("=== Decoded ===")
	fmt.Println(string(out))
}

// dump renders the bits in rows of 48, grouped by six-bit character.
func dump(bits decoder.Bits) string {
	var sb strings.Builder
	for row := 0; row < len(bits); row += 48 {
		fmt.Fprintf(&sb, "%4d  ", row)
		for i := row; i < row+48 && i < len(bits); i++ {
			if i > row && (i-row)%6 == 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte('0' + bits[i])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "%s: %v\n", decoder.ErrorKind(err), err)
	os.Exit(1)
}
