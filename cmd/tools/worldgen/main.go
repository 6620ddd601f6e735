package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/annel0/sky-quest/internal/util"
	"github.com/annel0/sky-quest/internal/world"
)

func main() {
	var (
		quality = flag.String("quality", "medium", "Display quality: low, medium, high")
		seed    = flag.Int64("seed", 0, "Noise seed 1..100 (0 - random)")
		width   = flag.Int("width", world.WorldWidth, "World width")
		depth   = flag.Int("depth", world.WorldDepth, "World depth")
		pickups = flag.Int("pickups", world.DefaultPickupCount, "Pickup count")
		octaves = flag.Int("octaves", util.DefaultOctaves, "Perlin noise octaves")
		showMap = flag.Bool("map", false, "Print ASCII height map")
	)
	flag.Parse()

	q, err := world.ParseQuality(*quality)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *width <= 0 || *depth <= 0 {
		log.Fatalf("❌ Invalid size %dx%d", *width, *depth)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	layout := world.NewPipeline(
		world.NewGenerator(
			world.WithSeed(*seed),
			world.WithRand(rng),
			world.WithNoiseFactory(util.NewPerlinFactory(int32(*octaves))),
		),
		world.NewPlacer(rng, *pickups),
	).WithSize(*width, *depth).Build(q)

	printStats(os.Stdout, layout, q)
	if *showMap {
		fmt.Fprintln(os.Stdout)
		fmt.Fprint(os.Stdout, renderMap(layout))
	}
}

// printStats печатает сводку по полю, поверхности и расстановке
func printStats(w io.Writer, l *world.Layout, q world.DisplayQuality) {
	fmt.Fprintf(w, "🌍 World %dx%dx%d (quality=%s, seed=%d)\n", l.Width, l.Height, l.Depth, q, l.Seed)
	fmt.Fprintf(w, "   solid cells:   %d\n", l.SolidCount)
	fmt.Fprintf(w, "   surface cubes: %d\n", len(l.Surface))
	fmt.Fprintf(w, "   columns:       %d\n", len(l.Columns))
	fmt.Fprintf(w, "   pickups:       %d\n", len(l.Batch.Pickups))
	fmt.Fprintf(w, "   hazards:       %d of %d candidates\n", len(l.Batch.Hazards), len(l.Batch.HazardCandidates))

	counts := make(map[string]int)
	for _, d := range l.Descriptors() {
		counts[d.Category.String()]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "   entities:")
	for _, name := range names {
		fmt.Fprintf(w, "     %-10s %d\n", name, counts[name])
	}
}

// renderMap рисует карту высот сверху: цифра - высшая ячейка поверхности в долях высоты,
// 'o' - шар, 'x' - враг, '.' - пустая колонка
func renderMap(l *world.Layout) string {
	if l.Width == 0 || l.Depth == 0 {
		return ""
	}

	top := make([]int, l.Width*l.Depth)
	for i := range top {
		top[i] = -1
	}
	for _, p := range l.Surface {
		idx := p.Z*l.Width + p.X
		top[idx] = max(top[idx], p.Y)
	}

	grid := make([]byte, len(top))
	for i, y := range top {
		if y < 0 {
			grid[i] = '.'
			continue
		}
		grid[i] = byte('0' + min(9, y*10/max(1, l.Height)))
	}
	for _, p := range l.Batch.Hazards {
		grid[p.Z*l.Width+p.X] = 'x'
	}
	for _, p := range l.Batch.Pickups {
		grid[p.Z*l.Width+p.X] = 'o'
	}

	var sb strings.Builder
	for z := 0; z < l.Depth; z++ {
		sb.Write(grid[z*l.Width : (z+1)*l.Width])
		sb.WriteByte('\n')
	}
	return sb.String()
}
