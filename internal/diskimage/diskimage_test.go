package diskimage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tefla/wire-hdl/internal/diskimage"
)

func TestDirEntryRoundTrip(t *testing.T) {
	e := diskimage.DirEntry{
		Status: diskimage.DirStatusInUse,
		Name:   "KERNEL",
		Ext:    "BIN",
		Attr:   0x01,
		Sector: 12,
		Size:   4096,
	}
	b, err := diskimage.EncodeDirEntry(e)
	require.NoError(t, err)
	require.Len(t, b, diskimage.DirEntrySize)

	got, err := diskimage.DecodeDirEntry(b)
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestDirEntryNameTooLong(t *testing.T) {
	_, err := diskimage.EncodeDirEntry(diskimage.DirEntry{Name: "TOOLONGNAME"})
	require.Error(t, err)
}

func TestBootSectorRoundTrip(t *testing.T) {
	payload := []byte{0xA9, 0x00, 0x8D, 0x00, 0x02}
	img := diskimage.EncodeBootSector(diskimage.BootSector{Entry: 0x7C00, Load: 0x7C00, SectorCount: 1}, payload)
	require.Equal(t, diskimage.BootSectorHeaderSize+len(payload), len(img))
	require.Equal(t, byte('W'), img[0])
	require.Equal(t, byte('F'), img[1])

	bs, gotPayload, err := diskimage.DecodeBootSector(img)
	require.NoError(t, err)
	require.Equal(t, uint16(0x7C00), bs.Entry)
	require.Equal(t, uint16(0x7C00), bs.Load)
	require.Equal(t, uint16(1), bs.SectorCount)
	require.Equal(t, payload, gotPayload)
}

func TestBootSectorBadMagic(t *testing.T) {
	img := make([]byte, diskimage.BootSectorHeaderSize)
	_, _, err := diskimage.DecodeBootSector(img)
	require.Error(t, err)
}

func TestRISVHeaderRoundTrip(t *testing.T) {
	h := diskimage.RISVHeader{EntryOffset: 0x1000, CodeSize: 256, DataSize: 64, BssSize: 128, StackSize: 4096}
	b := diskimage.EncodeRISVHeader(h)
	require.Len(t, b, diskimage.RISVHeaderSize)

	got, err := diskimage.DecodeRISVHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestRISVHeaderBadMagic(t *testing.T) {
	b := make([]byte, diskimage.RISVHeaderSize)
	_, err := diskimage.DecodeRISVHeader(b)
	require.Error(t, err)
}
