package fetch_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/outpostkit/fetch"
	"github.com/outpostkit/fetch/transport"
)

func ExampleNew() {
	d, err := fetch.New(
		fetch.WithTimeout(10*time.Second),
		fetch.WithUserAgent("myapp/1.0"),
		fetch.WithDefaults(fetch.Defaults{Chunking: true}),
	)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := d.Dispatch(context.Background(), "https://api.example.com/v1/resource").Response()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.StatusCode)
}

func ExampleDispatcher_Dispatch_chunks() {
	d, err := fetch.New()
	if err != nil {
		log.Fatal(err)
	}

	// Tail a streaming endpoint, handling each newly received piece
	// of the body as it arrives.
	r := d.Dispatch(context.Background(), "https://logs.example.com/tail",
		fetch.WithChunking(true),
	)
	r.OnProgress(func(ev transport.ProgressEvent, chunk []byte) {
		if chunk != nil {
			fmt.Print(string(chunk))
		}
	})

	if err := r.Err(); err != nil {
		log.Fatal(err)
	}
}

func ExampleResult_OnUploadProgress() {
	d, err := fetch.New()
	if err != nil {
		log.Fatal(err)
	}

	r := d.Dispatch(context.Background(), "https://api.example.com/v1/upload",
		fetch.WithMethod(http.MethodPost),
		fetch.WithPayload(map[string]string{"name": "report.txt"}),
	)
	r.OnUploadProgress(func(ev transport.ProgressEvent) {
		fmt.Printf("sent %d/%d bytes\n", ev.Loaded, ev.Total)
	})

	if _, err := r.Response(); err != nil {
		log.Fatal(err)
	}
}
