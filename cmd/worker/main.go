package main

import (
	"context"
	"log"

	"github.com/julianader/veoflow-api/internal/platform"
	"github.com/julianader/veoflow-api/renderer"
	"github.com/julianader/veoflow-api/tasks"
	"github.com/julianader/veoflow-api/worker"
)

func main() {
	// Use the shared initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()
	rc := renderer.NewClient(platform.RendererBaseURL(), platform.LocalMediaHost())
	ctx := context.Background()

	p := worker.NewProcessor(db, rdb, rc, platform.RenderPollTimeout())
	p.Register(tasks.QueueVideoRender, p.HandleVideoRender)
	p.Register(tasks.QueueVoiceover, p.HandleVoiceover)
	p.Register(tasks.QueueStoryboard, p.HandleStoryboard)

	log.Println("Worker started, waiting for queue tasks...")
	p.Listen(ctx, tasks.QueueVideoRender, tasks.QueueVoiceover, tasks.QueueStoryboard)
}
