// Command scan-inspect runs the food image interpreter against a local file
// and prints every field of the resulting record.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/bootstrap"
	"github.com/risithcha/nutritrack/pkg/domain/food_analysis"
	"github.com/risithcha/nutritrack/pkg/infrastructure/ai"
	infrastorage "github.com/risithcha/nutritrack/pkg/infrastructure/storage"
)

func main() {
	parallel := flag.Bool("parallel", false, "run the nutrition, meal type and health score calls concurrently")
	timeout := flag.Duration("timeout", shared.DefaultInferenceTimeout, "per-call inference timeout")
	model := flag.String("model", ai.DefaultModel, "Gemini model name")
	tips := flag.Bool("tips", true, "also fetch nutrition tips")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: scan-inspect [flags] <image>")
		os.Exit(1)
	}
	_ = godotenv.Load()

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := bootstrap.NewLogger("scan-inspect")

	var gen shared.Generator = ai.Unconfigured{}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		g, err := ai.NewGeminiGenerator(ctx, key, *model, logger)
		if err != nil {
			fmt.Printf("Error creating Gemini client: %v\n", err)
			os.Exit(1)
		}
		defer g.Close()
		gen = g
	} else {
		fmt.Println("GEMINI_API_KEY not set, expect the fallback record")
	}

	interpreter := food_analysis.New(gen, logger, food_analysis.Config{Timeout: *timeout, Parallel: *parallel})
	img := shared.Image{MIMEType: infrastorage.DetectContentType(data), Data: data}

	start := time.Now()
	res, err := interpreter.Analyze(ctx, path, img)
	if err != nil {
		fmt.Printf("Rejected: %v\n", err)
		os.Exit(2)
	}
	if *tips && !res.IsFallback() {
		res.Record.Tips = interpreter.Tips(ctx, res.Record)
	}
	elapsed := time.Since(start)

	r := res.Record
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "State\t%s\n", res.State)
	states := make([]string, len(res.Path))
	for i, s := range res.Path {
		states[i] = string(s)
	}
	fmt.Fprintf(w, "Path\t%s\n", strings.Join(states, " -> "))
	if res.Cause != nil {
		fmt.Fprintf(w, "Cause\t%v\n", res.Cause)
	}
	fmt.Fprintf(w, "Elapsed\t%s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "\t")
	fmt.Fprintf(w, "Name\t%s\n", r.Name)
	fmt.Fprintf(w, "Calories\t%.0f kcal\n", r.Kcal)
	fmt.Fprintf(w, "Protein\t%.1f g\n", r.ProteinG)
	fmt.Fprintf(w, "Carbs\t%.1f g\n", r.CarbsG)
	fmt.Fprintf(w, "Fat\t%.1f g\n", r.FatG)
	fmt.Fprintf(w, "Fiber\t%.1f g\n", r.FiberG)
	fmt.Fprintf(w, "Sugar\t%.1f g\n", r.SugarG)
	fmt.Fprintf(w, "Sodium\t%.0f mg\n", r.SodiumMg)
	fmt.Fprintf(w, "Serving\t%s\n", r.ServingSizeDescription)
	fmt.Fprintf(w, "Confidence\t%d%%\n", r.ConfidencePct)
	fmt.Fprintf(w, "Meal type\t%s\n", r.MealType)
	fmt.Fprintf(w, "Health score\t%d/10\n", r.HealthScore)
	for i, tip := range r.Tips {
		fmt.Fprintf(w, "Tip %d\t%s\n", i+1, tip)
	}
	w.Flush()
}
