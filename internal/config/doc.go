// Package config loads hostrender.json.
//
//	{
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 7070,
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "proxy": {
//	    "url": "ws://localhost:7070/ws",
//	    "maxBatchOps": 512,
//	    "ackTimeout": "5s"
//	  },
//	  "snapshot": {
//	    "backend": "s3",
//	    "bucket": "render-snapshots",
//	    "region": "us-east-1"
//	  },
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  }
//	}
//
// Missing fields take the values from New. Durations use Go syntax
// ("250ms", "5s").
package config
