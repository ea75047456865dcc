// graphload bulk-loads generated node/edge tables into a DynamoDB table
// for benchmark runs that want the graph behind an API instead of flat
// files. Table kind is detected from the header line.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/guregu/dynamo"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

var (
	optTable          = flag.String("table", "", "table name to load to")
	optPartitionKey   = flag.String("partition-key", "", "prefix of partition key")
	optSplitPartition = flag.Int64("split-partition", 10, "number of partitions to split")
	optPutWorkers     = flag.Int("put-workers", 10, "number of workers to put items")
	optVersion        = flag.Bool("version", false, "show version")
)

var version string

// Record is one node or edge row as stored in DynamoDB.
type Record struct {
	Code      string `dynamo:"code"`
	Seq       int64  `dynamo:"seq"`
	Kind      string `dynamo:"kind"`
	Src       uint64 `dynamo:"src"`
	Dst       uint64 `dynamo:"dst"`
	Data      string `dynamo:"data"`
	LoadID    string `dynamo:"load_id"`
	CreatedAt int64  `dynamo:"created_at"`
}

func main() {
	flag.Parse()

	if *optVersion {
		fmt.Println(version)
		return
	}

	if err := run(); err != nil {
		log.Fatalf("*** %v", err)
	}
}

// parseRow maps a |-separated row to a Record. Node rows are "<id>" or
// "<id>|<data>", edge rows "<src>|<dst>" or "<src>|<dst>|<data>".
func parseRow(kind string, rec []string) (Record, error) {
	r := Record{Kind: kind}
	src, err := strconv.ParseUint(rec[0], 10, 64)
	if err != nil {
		return r, fmt.Errorf("bad id %q: %w", rec[0], err)
	}
	r.Src = src
	switch kind {
	case "node":
		if len(rec) > 1 {
			r.Data = rec[1]
		}
	case "edge":
		if len(rec) < 2 {
			return r, fmt.Errorf("edge row has %d fields", len(rec))
		}
		dst, err := strconv.ParseUint(rec[1], 10, 64)
		if err != nil {
			return r, fmt.Errorf("bad dst %q: %w", rec[1], err)
		}
		r.Dst = dst
		if len(rec) > 2 {
			r.Data = rec[2]
		}
	}
	return r, nil
}

func tableKind(header []string) (string, error) {
	if len(header) > 0 {
		switch header[0] {
		case "NodeID":
			return "node", nil
		case "SrcID":
			return "edge", nil
		}
	}
	return "", fmt.Errorf("unrecognized header %v", header)
}

func run() error {
	if *optTable == "" {
		return errors.New("--table must be specified")
	}
	if *optPartitionKey == "" {
		return errors.New("--partition-key must be specified")
	}

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))

	cli := dynamo.NewFromIface(dynamodb.New(sess))

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	from := time.Now()
	loadID := uuid.NewString()
	log.Printf("load=%s", loadID)

	var seq int64
	chPut := make(chan Record, *optPutWorkers*2)
	egPut, ctxPut := errgroup.WithContext(ctx)
	for i := 0; i < *optPutWorkers; i++ {
		i := i
		ctx := ctxPut
		egPut.Go(func() (retErr error) {
			count := 0
			defer func() {
				if retErr != nil {
					cancel()
				}
				log.Printf("[%d]put: done: count=%s, err=%v", i, humanize.Comma(int64(count)), retErr)
			}()

			// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_BatchWriteItem.html
			// up to 25 operations per request
			recs := make([]interface{}, 0, 25)
			flush := func() error {
				l := len(recs)
				if l == 0 {
					return nil
				}
				_, err := cli.Table(*optTable).Batch().Write().Put(recs...).RunWithContext(ctx)
				if err != nil {
					return err
				}
				count += l
				recs = recs[:0]
				return nil
			}

		loop:
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case e, ok := <-chPut:
					if !ok {
						break loop
					}
					recs = append(recs, e)
					if len(recs) == cap(recs) {
						if err := flush(); err != nil {
							return err
						}
					}
				}
			}
			return flush()
		})
	}

	var retErr error
	for _, fn := range flag.Args() {
		if err := func() error {
			log.Printf("loading %s", fn)
			fp, err := os.Open(fn)
			if err != nil {
				return fmt.Errorf("os.Open: %w", err)
			}
			defer fp.Close()

			r := csv.NewReader(fp)
			r.Comma = '|'
			r.FieldsPerRecord = -1

			kind := ""
			for i := 0; ; i++ {
				record, err := r.Read()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return fmt.Errorf("Read: %w", err)
				}

				if i == 0 {
					kind, err = tableKind(record)
					if err != nil {
						return err
					}
					continue
				}

				rec, err := parseRow(kind, record)
				if err != nil {
					return fmt.Errorf("%s:%d: %w", fn, i+1, err)
				}

				nextSeq := atomic.AddInt64(&seq, 1)
				suffix := strconv.FormatInt(nextSeq%*optSplitPartition, 10)
				rec.Code = *optPartitionKey + ":" + suffix
				rec.Seq = nextSeq
				rec.LoadID = loadID
				rec.CreatedAt = time.Now().Unix()
				select {
				case <-ctx.Done():
					return ctx.Err()
				case chPut <- rec:
				}

				if nextSeq%1000 == 0 {
					log.Printf("%s: posted %s recs", fn, humanize.Comma(nextSeq))
				}
			}

			return nil
		}(); err != nil {
			retErr = multierror.Append(retErr, err)
			// keep going far enough to drain and join the put workers
			break
		}
	}

	close(chPut)
	log.Printf("waiting for put workers done")
	if err := egPut.Wait(); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("egPut.Wait: %w", err))
	}

	if retErr != nil {
		return retErr
	}

	log.Printf("load=%s dur=%s", loadID, time.Since(from))

	return nil
}
