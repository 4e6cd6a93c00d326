package model

import "time"

const DefaultTimeout = 500 * time.Millisecond
const DefaultERPTimeout = 10 * time.Second
const DefaultOrderTimeout = 30 * time.Second
const DefaultLockTimeout = 10 * time.Second
const DefaultNotifyQueue = 128
const DefaultNotifyWorkers = 2
const DefaultPartnerCacheSize = 1024

const CentsInUnit = 100

const HeaderContentType = "Content-Type"
const ContentTypeJSON = "application/json"

type ContextKey string

const KeyContextLogger ContextKey = "logger"

const KeyLoggerError = "error"
