// Package stream fans tick snapshots out to live subscribers.
//
// Every subscriber owns a GrowableBuffer, so Publish never waits on a slow
// reader. Buffers double when they pass 70% fill, up to a ceiling. A buffer at
// its ceiling drops its oldest snapshot to make room, since only recent ticks
// matter to a live view.
//
//	hub := stream.NewHub(stream.DefaultConfig(), logger)
//	sub, _ := hub.Subscribe()
//	defer sub.Close()
//	for {
//	    tick, ok := sub.Next()
//	    if !ok {
//	        return
//	    }
//	    ...
//	}
package stream
