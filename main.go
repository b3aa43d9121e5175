/* main.go
 * The entrypoint for running the typing race service. For details see `readme.md`
 * Usage: go run main.go -db="<database>" -addr="<listen address>" [-cleanup]
 * Authors: Zachary Bower
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"

	api "typerace-api/api/api"
	"typerace-api/web"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	// Flags
	dbPtr := flag.String("db", "typerace", "Name of the MongoDB database to use")
	addrPtr := flag.String("addr", envOrDefault("ADDR", ":8080"), "Listen address for the HTTP server")
	cleanupPtr := flag.Bool("cleanup", false, "Run the attempt cleanup job once and exit instead of serving")

	flag.Parse()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI must be set")
	}

	a, err := api.NewAPI(*dbPtr, mongoURI)
	if err != nil {
		log.Fatalf("failed to initialize API: %v", err)
	}
	defer func() {
		if err := a.Store.GetClient().Disconnect(context.TODO()); err != nil {
			log.Println("failed to disconnect from mongo:", err)
		}
	}()

	if *cleanupPtr {
		report, err := a.RunCleanup()
		if err != nil {
			log.Fatalf("cleanup failed: %v", err)
		}
		log.Printf("cleanup finished: %+v", report)
		return
	}

	if err := web.Start(web.Config{Addr: *addrPtr, API: a}); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
