// Command functions serves the Cloud Functions locally. Set FUNCTION_TARGET
// to DailyRollover or NotifyIntake to pick one.
package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	// Blank imports register the functions
	_ "github.com/risithcha/nutritrack/functions/daily-rollover"
	_ "github.com/risithcha/nutritrack/functions/intake-notifier"
)

func main() {
	port := "8081"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v\n", err)
	}
}
