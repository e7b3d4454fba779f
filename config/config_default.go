package config

import "github.com/xackery/replyquote/quote"

var defaultConfig = `# ReplyQuote Configuration

# Enable debug when a crash occurs that is not self apparent
# Not recommended on normal use, very verbose
debug = false

# Template for replying to deleted messages
# This value is re-read on every send. If you edit it while replyquote is running, it applies instantly
# Variables: ` + quote.Variables + `
# ` + quote.TimeFormatHelp + `
reply_template = """
` + quote.DefaultTemplate + `"""

[discord]

	# Enable Discord
	enabled = true

	# Required. Found at https://discordapp.com/developers/ under your app's bot's section
	bot_token = ""

	# Optional. In Discord, right click a channel name and Copy ID. Paste it here.
	# Failure notifications will also appear on this discord channel
	notify_channel_id = ""

[message_log]

	# How many messages seen by the bot are kept in memory, to quote them after deletion
	cache_size = 10000

	# Optional. A JSON lines file written by a message logger, one event per line:
	# {"type":"create|update|delete","message":{"id":"","channel_id":"","author_id":"","content":"","timestamp":""}}
	tail_path = ""

	[message_log.sql]
		# Optional. Look up messages in a message logger database
		enabled = false
		# mysql or sqlite
		driver = "mysql"
		dsn = "user:password@tcp(127.0.0.1:3306)/logger"
		table = "messages"

[nats]

	# Publish failure notifications to NATS
	enabled = false
	host = "127.0.0.1:4222"
	subject = "replyquote.notify"

[api]

	# Enable the local HTTP API, used to send messages through replyquote
	enabled = true
	host = "127.0.0.1:9933"
	# Sends allowed per second, and in a burst
	rate_limit = 5
	burst = 10
`
