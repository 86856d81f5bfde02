package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldRunID 同步运行 ID 字段
	FieldRunID = "runId"

	// FieldTrigger 触发来源字段（startup / tick / manual）
	FieldTrigger = "trigger"

	// FieldStep 流水线步骤字段
	FieldStep = "step"

	// FieldCommand 外部命令字段
	FieldCommand = "command"

	// FieldDir 工作目录字段
	FieldDir = "dir"

	// FieldStdout 标准输出字段
	FieldStdout = "stdout"

	// FieldStderr 标准错误字段
	FieldStderr = "stderr"

	// FieldExitCode 退出码字段
	FieldExitCode = "exitCode"

	// FieldKind 失败类型字段
	FieldKind = "kind"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldInterval 调度间隔字段
	FieldInterval = "interval"

	// FieldState 调度器状态字段
	FieldState = "state"

	// FieldError 错误信息字段
	FieldError = "error"
)
