package config

import "github.com/tornadoscript/tornado/internal/param"

// Variable names shared by the config file, the console and the tornado core.
const (
	VarNotifications       = "notifications"
	VarSpawnInStorm        = "spawninstorm"
	VarMultiVortex         = "multiVortex"
	VarMovementEnabled     = "vortexMovementEnabled"
	VarMoveSpeedScale      = "vortexMoveSpeedScale"
	VarTopEntitySpeed      = "vortexTopEntitySpeed"
	VarMaxEntityDist       = "vortexMaxEntityDist"
	VarHorizontalPullForce = "vortexHorizontalPullForce"
	VarVerticalPullForce   = "vortexVerticalPullForce"
	VarRotationSpeed       = "vortexRotationSpeed"
	VarRadius              = "vortexRadius"
	VarReverseRotation     = "vortexReverseRotation"
	VarNeverDespawn        = "vortexNeverDespawn"
	VarMaxParticleLayers   = "vortexMaxParticleLayers"
	VarParticleCount       = "vortexParticleCount"
	VarLayerSeparation     = "vortexLayerSeperationScale"
	VarParticleName        = "vortexParticleName"
	VarParticleAsset       = "vortexParticleAsset"
	VarCloudTop            = "vortexEnableCloudTopParticle"
	VarMaxEntityCount      = "vortexMaxEntityCount"
	VarEntityScanInterval  = "vortexEntityScanInterval"
	VarReleaseMargin       = "vortexReleaseMargin"
)

// RegisterParams seeds store with every tunable from cfg.
func RegisterParams(cfg *Config, store *param.Store) {
	v, a, o := cfg.Vortex, cfg.VortexAdvanced, cfg.Other

	store.Register(VarNotifications, param.Bool(o.Notifications), false)
	store.Register(VarSpawnInStorm, param.Bool(o.SpawnInStorm), false)
	store.Register(VarMultiVortex, param.Bool(a.MultiVortex), false)

	store.Register(VarMovementEnabled, param.Bool(v.MovementEnabled), false)
	store.Register(VarMoveSpeedScale, param.Float(v.MoveSpeedScale), false)
	store.Register(VarTopEntitySpeed, param.Float(v.MaxEntitySpeed), false)
	store.Register(VarMaxEntityDist, param.Float(v.MaxEntityDistance), false)
	store.Register(VarHorizontalPullForce, param.Float(v.HorizontalForceScale), false)
	store.Register(VarVerticalPullForce, param.Float(v.VerticalForceScale), false)
	store.Register(VarRotationSpeed, param.Float(v.RotationSpeed), false)
	store.Register(VarRadius, param.Float(v.VortexRadius), false)
	store.Register(VarReverseRotation, param.Bool(v.ReverseRotation), false)
	store.Register(VarNeverDespawn, param.Bool(v.NeverDespawn), false)

	store.Register(VarMaxParticleLayers, param.Int(a.MaxParticleLayers), false)
	store.Register(VarParticleCount, param.Int(a.ParticlesPerLayer), false)
	store.Register(VarLayerSeparation, param.Float(a.LayerSeparationAmount), false)
	// effects are bound when a vortex is built; changing them live would not reach running particles
	store.Register(VarParticleName, param.String(a.ParticleName), true)
	store.Register(VarParticleAsset, param.String(a.ParticleAsset), true)
	store.Register(VarCloudTop, param.Bool(a.CloudTopEnabled), false)
	store.Register(VarMaxEntityCount, param.Int(a.MaxEntityCount), false)
	store.Register(VarEntityScanInterval, param.Int(a.EntityScanInterval), false)
	store.Register(VarReleaseMargin, param.Float(a.ReleaseMargin), false)
}
