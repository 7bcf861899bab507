package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/julianader/veoflow-api/internal/platform"
	"github.com/julianader/veoflow-api/models"
	"github.com/julianader/veoflow-api/tasks"
)

// staleAfter is how long a project may sit in "generating" without a status
// update before the sweep marks it failed. Workers mirror job progress onto
// the row on every poll, so a healthy render touches updated_at at least
// every few seconds.
const staleAfter = 30 * time.Minute

func main() {
	// Use the shared initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()
	ctx := context.Background()

	// Create a new cron scheduler
	c := cron.New()

	_, err := c.AddFunc("@every 1m", func() {
		sweepStaleRenders(ctx, db, rdb)
	})
	if err != nil {
		log.Fatalf("Error scheduling stale-render sweep: %v", err)
	}

	c.Start()
	defer c.Stop()

	// Start a goroutine to mirror project status events into the log
	go listenForStatusEvents(ctx, rdb)

	log.Println("Janitor started, sweeping every minute...")
	// Keep the main thread alive
	select {}
}

// sweepStaleRenders fails projects whose render has been "generating" with no
// row updates for longer than staleAfter. This catches workers that died
// mid-poll without reaching a terminal state.
func sweepStaleRenders(ctx context.Context, db *gorm.DB, rdb *redis.Client) {
	cutoff := time.Now().Add(-staleAfter)

	var stale []models.Project
	if err := db.Where("render_status = ? AND updated_at < ?", models.RenderGenerating, cutoff).
		Find(&stale).Error; err != nil {
		log.Printf("Error querying stale renders: %v", err)
		return
	}

	for _, project := range stale {
		log.Printf("Project %d render stale since %s, marking failed", project.ID, project.UpdatedAt.Format(time.RFC3339))

		if err := db.Model(&project).Update("render_status", models.RenderFailed).Error; err != nil {
			log.Printf("Error failing stale project %d: %v", project.ID, err)
			continue
		}

		msg := tasks.StatusMessage{ProjectID: project.ID, Status: models.RenderFailed, Detail: "render timed out"}
		if err := tasks.PublishStatus(ctx, rdb, msg); err != nil {
			log.Printf("Error publishing to redis: %v", err)
		}
	}
}

// listenForStatusEvents subscribes to the project status channel and logs
// each event. This uses Pub/Sub, so you should only run one instance of this
// service to avoid duplicate log streams.
func listenForStatusEvents(ctx context.Context, rdb *redis.Client) {
	pubsub := rdb.Subscribe(ctx, tasks.StatusChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()

	log.Println("Janitor listening for project status events...")

	for msg := range ch {
		var message tasks.StatusMessage
		if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
			log.Printf("Error unmarshalling %s message: %v", tasks.StatusChannel, err)
			continue
		}

		log.Printf("Project %d status: %s (%s)", message.ProjectID, message.Status, message.Detail)
	}
}
