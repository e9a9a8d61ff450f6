package blueprint

// AttachKind is one of the optional secondary embedding modes layered on the
// primary HTTP embedding.
type AttachKind string

const (
	AttachWorker   AttachKind = "worker"
	AttachSDK      AttachKind = "sdk"
	AttachCron     AttachKind = "cron"
	AttachPipeline AttachKind = "pipeline"
)

// attachKindOrder fixes the traversal order for deterministic error output and
// planner filtering.
var attachKindOrder = []AttachKind{AttachWorker, AttachSDK, AttachCron, AttachPipeline}

// KnownAttachKinds returns every attach kind in declaration order.
func KnownAttachKinds() []AttachKind {
	return append([]AttachKind(nil), attachKindOrder...)
}

type fieldType int

const (
	fieldString fieldType = iota
	fieldOptionalString
	fieldPositiveInt
	fieldNonNegativeInt
	fieldEnum
)

// blockField declares one required companion field of an attach block.
type blockField struct {
	key     string
	typ     fieldType
	allowed []string
}

// capability maps an attach kind to its companion configuration block. Keeping
// the requirements in one table avoids scattering membership checks across the
// validator.
type capability struct {
	blockKey string
	fields   []blockField
}

var capabilityTable = map[AttachKind]capability{
	AttachWorker: {
		blockKey: "worker",
		fields: []blockField{
			{key: "queue", typ: fieldString},
			{key: "concurrency", typ: fieldPositiveInt},
			{key: "retry_limit", typ: fieldNonNegativeInt},
		},
	},
	AttachSDK: {
		blockKey: "sdk",
		fields: []blockField{
			{key: "package", typ: fieldString},
			{key: "language", typ: fieldEnum, allowed: []string{"go", "python", "typescript"}},
		},
	},
	AttachCron: {
		blockKey: "cron",
		fields: []blockField{
			{key: "schedule", typ: fieldString},
			{key: "timezone", typ: fieldOptionalString},
		},
	},
	AttachPipeline: {
		blockKey: "pipeline",
		fields: []blockField{
			{key: "stage", typ: fieldString},
			{key: "upstream", typ: fieldString},
		},
	},
}
