// Package redis opens the go-redis client shared by the realtime relay.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	emitter := realtime.NewRedisEmitter(client, rtCfg.RedisChannel, log)
//
// Healthcheck plugs into the server's /health endpoint.
package redis
