package config

// SERVER_YML is written to dev/config/server.yml the first time the server runs with --dev
const SERVER_YML = `
listener:
  port: 5000

log:
  level: debug

store:
  driver: sqlite
  path: scamguard.dev.db

dispatch:
  defaultCountryCode: "91"
  concurrency: 4
  sendTimeout: 10s

classifier:
  keywords: []

google:
  storage:
    bucket: "scamguard"
    prefix: "scamguard-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackup: false
  applicationCredentials:

# Credentials can also be set with TWILIO_SID, TWILIO_AUTH & TWILIO_NUMBER.
# Without them the server still runs; sms alerts are recorded as not sent.
twilio:
  accountSid:
  authToken:
  number:
  messagingServiceSid:
  webhookBaseURL:
  breaker:
    maxFailures: 5
    openTimeout: 30s
`
