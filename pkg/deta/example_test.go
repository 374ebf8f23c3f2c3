package deta_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/beanbocchi/deta/pkg/base"
	"github.com/beanbocchi/deta/pkg/deta"
	"github.com/beanbocchi/deta/pkg/drive"
	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/query"
	"github.com/beanbocchi/deta/pkg/update"
)

func ExampleClient_Base() {
	// Create client
	client, err := deta.NewFromEnv()
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		return
	}
	defer client.Close()

	users, err := client.Base("users")
	if err != nil {
		fmt.Printf("Failed to open base: %v\n", err)
		return
	}

	ctx := context.Background()
	res, err := users.Put(ctx,
		base.NewRecord("alex", field.New("age", 31), field.New("hometown", "Hanoi")),
		base.NewRecord("bob", field.New("age", 27)),
	)
	if err != nil {
		fmt.Printf("Put failed: %v\n", err)
		return
	}
	fmt.Printf("Stored %d users, %d failed\n", len(res.Processed.Items), len(res.Failed.Items))

	// Update in place
	if err := users.Update(ctx, "alex",
		update.Increment(field.New("age", 1)),
		update.Delete("hometown"),
	); err != nil {
		fmt.Printf("Update failed: %v\n", err)
		return
	}

	// Query every page
	adults, err := users.Query(ctx, query.New(query.GreaterEquals("age", 18)), base.QueryParams{})
	if err != nil {
		fmt.Printf("Query failed: %v\n", err)
		return
	}
	for _, item := range adults.Data {
		fmt.Printf("- %s\n", item.Key())
	}
}

func ExampleClient_Drive() {
	// Create client
	client, err := deta.New(os.Getenv("DETA_PROJECT_KEY"))
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		return
	}
	defer client.Close()

	photos, err := client.Drive("photos")
	if err != nil {
		fmt.Printf("Failed to open drive: %v\n", err)
		return
	}

	ctx := context.Background()

	// Upload, files over 10 MiB are sent in parts
	upload, err := photos.Upload(ctx, "notes/hello.txt", strings.NewReader("hello"))
	if err != nil {
		fmt.Printf("Upload failed: %v\n", err)
		return
	}
	fmt.Printf("Uploaded %s (%s)\n", upload.Name, upload.Hash)

	// Download
	file, err := photos.Download(ctx, "notes/hello.txt")
	if err != nil {
		fmt.Printf("Download failed: %v\n", err)
		return
	}
	defer file.Close()

	if _, err := io.Copy(os.Stdout, file); err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		return
	}

	// List every name under a prefix
	page, err := photos.List(ctx, drive.ListParams{Prefix: null.StringFrom("notes/")})
	if err != nil {
		fmt.Printf("List failed: %v\n", err)
		return
	}
	fmt.Printf("Found %d files\n", len(page.Data))
}
