// Package exrio reads and writes pixel buffers and render passes as
// OpenEXR files.
//
// Flat images map to four channels named literally "R", "G", "B", "A".
// Layered files use the channel naming convention
// "<layer>.<R|G|B|A|index>": on write, each pass's channels are named
// after its layer; on read, channels are grouped into layers by the
// text before the last '.' separator, and channels with no separator
// fall into the "default" layer.
//
// Within a layer, channels are ordered by suffix (R, G, B, A, then
// numeric indices, then anything else alphabetically) rather than by
// the codec's alphabetical channel order, so an RGBA layer always
// interleaves as R,G,B,A regardless of how the file stores it.
package exrio

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/half"

	"github.com/mrjoshuak/exrproc/pass"
	"github.com/mrjoshuak/exrproc/pixel"
)

// IO errors
var (
	ErrNotRGBA    = errors.New("exrio: buffer must have exactly 4 channels")
	ErrNoPasses   = errors.New("exrio: no passes to save")
	ErrNoChannels = errors.New("exrio: file has no channels")
)

// DefaultLayer is the layer name assigned to channels without a '.'
// separator in their name.
const DefaultLayer = "default"

// WriteOptions controls how files are encoded.
type WriteOptions struct {
	// Compression selects the codec's compression method.
	Compression exr.Compression

	// Half stores samples as 16-bit floats instead of 32-bit.
	Half bool
}

// DefaultWriteOptions returns the options used when none are supplied:
// ZIP compression, 32-bit float samples.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Compression: exr.CompressionZIP}
}

// LoadRGBA reads an EXR file into a 4-channel RGBA buffer. Channel
// names are matched with the codec's usual fallbacks; a missing alpha
// channel reads as 1.
func LoadRGBA(path string) (*pixel.Buffer, error) {
	img, err := exr.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("exrio: load %s: %w", path, err)
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := pixel.New(w, h, 4)
	copy(out.Data(), img.Pix)
	return out, nil
}

// SaveRGBA writes a 4-channel buffer as an EXR file with channels named
// "R", "G", "B", "A". Buffers with any other channel count are rejected
// with ErrNotRGBA.
func SaveRGBA(path string, b *pixel.Buffer, opts ...WriteOptions) error {
	if b.Channels() != 4 {
		return ErrNotRGBA
	}

	names := []string{"R", "G", "B", "A"}
	planes := deinterleave(b)
	return writeChannels(path, b.Width(), b.Height(), names, planes, writeOptions(opts))
}

// LoadPasses reads a layered EXR file into one pass per layer, ordered
// by layer name. Each pass's buffer interleaves the layer's channels in
// suffix order (see the package documentation).
func LoadPasses(path string) ([]*pass.Pass, error) {
	f, err := exr.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("exrio: open %s: %w", path, err)
	}
	defer f.Close()

	h := f.Header(0)
	width, height := h.Width(), h.Height()

	cl := h.Channels()
	if cl == nil || cl.Len() == 0 {
		return nil, ErrNoChannels
	}

	// Stage every channel into its own float32 plane and read the file
	// in a single pass.
	fb := exr.NewFrameBuffer()
	planes := make(map[string][]float32, cl.Len())
	for _, ch := range cl.Channels() {
		plane := make([]float32, width*height)
		planes[ch.Name] = plane
		fb.Set(ch.Name, exr.NewSliceFromFloat32(plane, width, height))
	}
	if err := readPixels(f, fb); err != nil {
		return nil, fmt.Errorf("exrio: read %s: %w", path, err)
	}

	// Group channel names by layer.
	layers := make(map[string][]string)
	for _, ch := range cl.Channels() {
		layer, _ := splitChannelName(ch.Name)
		layers[layer] = append(layers[layer], ch.Name)
	}

	layerNames := make([]string, 0, len(layers))
	for name := range layers {
		layerNames = append(layerNames, name)
	}
	sort.Strings(layerNames)

	passes := make([]*pass.Pass, 0, len(layerNames))
	for _, layer := range layerNames {
		channels := layers[layer]
		sortChannelsBySuffix(channels)

		p := pass.NewPass(layer, width, height, len(channels), false)
		p.Layer = layer
		data := p.Image.Data()
		n := len(channels)
		for c, chName := range channels {
			plane := planes[chName]
			for i, v := range plane {
				data[i*n+c] = v
			}
		}
		passes = append(passes, p)
	}
	return passes, nil
}

// LoadStore reads a layered EXR file into a pass store, one pass per
// layer keyed by layer name.
func LoadStore(path string) (*pass.Store, error) {
	passes, err := LoadPasses(path)
	if err != nil {
		return nil, err
	}
	s := pass.NewStore()
	for _, p := range passes {
		s.Put(p)
	}
	return s, nil
}

// SavePasses writes the passes as a single layered EXR file. Each
// pass's channels are named "<layer>.<R|G|B|A|index>". The image
// dimensions are taken from the first pass; ErrNoPasses is returned
// when the slice is empty.
func SavePasses(path string, passes []*pass.Pass, opts ...WriteOptions) error {
	if len(passes) == 0 {
		return ErrNoPasses
	}

	width := passes[0].Image.Width()
	height := passes[0].Image.Height()

	var names []string
	var planes [][]float32
	for _, p := range passes {
		layer := p.Layer
		if layer == "" {
			layer = p.Name
		}
		pp := deinterleave(p.Image)
		for c := range pp {
			names = append(names, layer+"."+channelSuffix(c))
			planes = append(planes, pp[c])
		}
	}
	return writeChannels(path, width, height, names, planes, writeOptions(opts))
}

// splitChannelName splits a channel name into its layer and suffix at
// the last '.'. Names with no separator belong to the default layer.
func splitChannelName(name string) (layer, suffix string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return DefaultLayer, name
}

// channelSuffix names the c-th channel of a pass: R, G, B, A for the
// first four, the numeric index beyond that.
func channelSuffix(c int) string {
	switch c {
	case 0:
		return "R"
	case 1:
		return "G"
	case 2:
		return "B"
	case 3:
		return "A"
	default:
		return strconv.Itoa(c)
	}
}

// suffixRank orders channel suffixes within a layer: R, G, B, A first,
// then numeric indices at their position, then everything else after,
// alphabetically.
func suffixRank(suffix string) int {
	switch suffix {
	case "R":
		return 0
	case "G":
		return 1
	case "B":
		return 2
	case "A":
		return 3
	}
	if n, err := strconv.Atoi(suffix); err == nil && n >= 0 {
		return n
	}
	return 1 << 20
}

// sortChannelsBySuffix sorts full channel names by their suffix rank,
// falling back to name order for equal ranks.
func sortChannelsBySuffix(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		_, si := splitChannelName(names[i])
		_, sj := splitChannelName(names[j])
		ri, rj := suffixRank(si), suffixRank(sj)
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}

// deinterleave copies a buffer into one plane per channel.
func deinterleave(b *pixel.Buffer) [][]float32 {
	ch := b.Channels()
	n := b.Width() * b.Height()
	planes := make([][]float32, ch)
	data := b.Data()
	for c := 0; c < ch; c++ {
		plane := make([]float32, n)
		for i := 0; i < n; i++ {
			plane[i] = data[i*ch+c]
		}
		planes[c] = plane
	}
	return planes
}

// readPixels reads all pixels into fb using the reader matching the
// file's layout.
func readPixels(f *exr.File, fb *exr.FrameBuffer) error {
	h := f.Header(0)

	if h.IsTiled() {
		tr, err := exr.NewTiledReader(f)
		if err != nil {
			return err
		}
		tr.SetFrameBuffer(fb)
		return tr.ReadTiles(0, 0, h.NumXTiles(0)-1, h.NumYTiles(0)-1)
	}

	sr, err := exr.NewScanlineReader(f)
	if err != nil {
		return err
	}
	sr.SetFrameBuffer(fb)
	return sr.ReadPixels(0, h.Height()-1)
}

// writeChannels writes named float32 planes as a scanline EXR file.
func writeChannels(path string, width, height int, names []string, planes [][]float32, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exrio: create %s: %w", path, err)
	}
	defer f.Close()

	pixelType := exr.PixelTypeFloat
	if opts.Half {
		pixelType = exr.PixelTypeHalf
	}

	h := exr.NewScanlineHeader(width, height)
	h.SetCompression(opts.Compression)

	// EXR channel lists are kept in sorted name order.
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return names[order[i]] < names[order[j]] })

	cl := exr.NewChannelList()
	for _, i := range order {
		cl.Add(exr.Channel{Name: names[i], Type: pixelType, XSampling: 1, YSampling: 1})
	}
	h.SetChannels(cl)

	fb := exr.NewFrameBuffer()
	for i, name := range names {
		if opts.Half {
			data := make([]half.Half, len(planes[i]))
			for j, v := range planes[i] {
				data[j] = half.FromFloat32(v)
			}
			fb.Set(name, exr.NewSliceFromHalf(data, width, height))
		} else {
			fb.Set(name, exr.NewSliceFromFloat32(planes[i], width, height))
		}
	}

	sw, err := exr.NewScanlineWriter(f, h)
	if err != nil {
		return fmt.Errorf("exrio: write %s: %w", path, err)
	}
	sw.SetFrameBuffer(fb)

	yMin := int(h.DataWindow().Min.Y)
	yMax := int(h.DataWindow().Max.Y)
	if err := sw.WritePixels(yMin, yMax); err != nil {
		return fmt.Errorf("exrio: write %s: %w", path, err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("exrio: write %s: %w", path, err)
	}
	return nil
}

// writeOptions resolves the optional options argument.
func writeOptions(opts []WriteOptions) WriteOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return DefaultWriteOptions()
}
