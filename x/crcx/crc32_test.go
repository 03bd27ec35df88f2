package crcx

import (
	"hash"
	"testing"
)

var _ hash.Hash32 = (*Digest)(nil)

func TestByteFedCheckValue(t *testing.T) {
	crc := Init
	for _, b := range []byte("123456789") {
		crc = UpdateByte(crc, b)
	}
	if crc != 0x0376e6e7 {
		t.Fatalf("CRC-32/MPEG-2 check = %#08x, want 0x0376e6e7", crc)
	}
}

func TestWordFeedIsByteFeedMSBFirst(t *testing.T) {
	mem := []byte{0x78, 0x56, 0x34, 0x12, 0xef, 0xbe, 0xad, 0xde}
	byByte := Init
	for i := 0; i < len(mem); i += 4 {
		for j := 3; j >= 0; j-- {
			byByte = UpdateByte(byByte, mem[i+j])
		}
	}
	if got := UpdateWords(Init, mem); got != byByte {
		t.Fatalf("word feed %#08x != byte feed %#08x", got, byByte)
	}
	if got := UpdateWord(UpdateWord(Init, 0x12345678), 0xdeadbeef); got != byByte {
		t.Fatalf("UpdateWord chain %#08x != %#08x", got, byByte)
	}
}

func TestDigestChunkingIsTransparent(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	want := UpdateWords(Init, data)
	for _, step := range []int{1, 3, 4, 5, 13, 64} {
		d := New()
		for i := 0; i < len(data); i += step {
			end := min(i+step, len(data))
			d.Write(data[i:end])
		}
		if d.Sum32() != want {
			t.Fatalf("step %d: %#08x != %#08x", step, d.Sum32(), want)
		}
	}
	if Checksum(data) != want {
		t.Fatal("Checksum disagrees with UpdateWords")
	}
}

func TestDigestPadsPartialWord(t *testing.T) {
	d := New()
	d.Write([]byte{1, 2, 3})
	if d.Sum32() != UpdateWords(Init, []byte{1, 2, 3, 0}) {
		t.Fatal("partial word should be zero padded")
	}
	sum := d.Sum(nil)
	if len(sum) != 4 {
		t.Fatalf("Sum len = %d", len(sum))
	}
	d.Reset()
	if d.Sum32() != Init {
		t.Fatal("Reset should restore Init")
	}
}

func TestSingleBitFlipChangesCRC(t *testing.T) {
	data := make([]byte, 256)
	base := UpdateWords(Init, data)
	for bit := 0; bit < len(data)*8; bit++ {
		data[bit/8] ^= 1 << (bit % 8)
		if UpdateWords(Init, data) == base {
			t.Fatalf("bit %d flip undetected", bit)
		}
		data[bit/8] ^= 1 << (bit % 8)
	}
}
