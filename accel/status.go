package accel

// Status names a backend failure. The values follow the classic compute API
// error codes so logs read the same as a native driver's.
type Status string

// Closed set of statuses reported in fault.Error.Status.
const (
	StatusInvalidValue          Status = "INVALID_VALUE"
	StatusInvalidBufferSize     Status = "INVALID_BUFFER_SIZE"
	StatusInvalidMemObject      Status = "INVALID_MEM_OBJECT"
	StatusAllocationFailure     Status = "MEM_OBJECT_ALLOCATION_FAILURE"
	StatusOutOfResources        Status = "OUT_OF_RESOURCES"
	StatusInvalidKernelArgs     Status = "INVALID_KERNEL_ARGS"
	StatusInvalidWorkGroupSize  Status = "INVALID_WORK_GROUP_SIZE"
	StatusInvalidGlobalWorkSize Status = "INVALID_GLOBAL_WORK_SIZE"
	StatusKernelFault           Status = "KERNEL_FAULT"
	StatusDeviceClosed          Status = "DEVICE_CLOSED"
	StatusCancelled             Status = "CANCELLED"
)
