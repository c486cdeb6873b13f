// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package notify sends transactional email.

Senders:
  - SMTPSender: net/smtp relay with STARTTLS or implicit TLS on port 465
  - ResendSender: Resend HTTP API
  - LogSender: logs instead of sending (development)

Templates are embedded and rendered with html/template and text/template.
Mailer sends verification and password reset mail inline, returning an
Upstream error on failure, and hands the welcome mail to Queue.

Queue is a watermill gochannel pub/sub with a single consumer handler on
TopicEmail. Sends are throttled with a token bucket (golang.org/x/time/rate)
and failures are logged and acked. Queue.Run is supervised in the
messaging layer.
*/
package notify
