//go:build windows

package webgpu

// workgroupSize is the number of invocations per workgroup.
const workgroupSize = 256

// weightDecayShader: w = (1 - decay*lr) * w + lr * dw.
const weightDecayShader = `
@group(0) @binding(0) var<storage, read_write> w: array<f32>;
@group(0) @binding(1) var<storage, read> dw: array<f32>;

struct Params {
    size: u32,
    lr: f32,
    decay: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= params.size) {
        return;
    }
    w[i] = (1.0 - params.decay * params.lr) * w[i] + params.lr * dw[i];
}
`

// rpropShader adapts each rate from the sign agreement of dw and dw_old,
// moves w unless the sign flipped, and records dw as the new history.
// NaN compares false both ways and so has sign 0.
const rpropShader = `
@group(0) @binding(0) var<storage, read_write> w: array<f32>;
@group(0) @binding(1) var<storage, read> dw: array<f32>;
@group(0) @binding(2) var<storage, read_write> dw_old: array<f32>;
@group(0) @binding(3) var<storage, read_write> rate: array<f32>;

struct Params {
    size: u32,
    decay: f32,
    eta_plus: f32,
    eta_minus: f32,
    rate_min: f32,
    rate_max: f32,
}
@group(0) @binding(4) var<uniform> params: Params;

fn sgn(x: f32) -> f32 {
    if (x > 0.0) {
        return 1.0;
    }
    if (x < 0.0) {
        return -1.0;
    }
    return 0.0;
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= params.size) {
        return;
    }
    let g = dw[i];
    let s = sgn(g);
    let agree = s * sgn(dw_old[i]);

    var r = rate[i];
    if (agree > 0.0) {
        r = r * params.eta_plus;
    } else if (agree < 0.0) {
        r = r * params.eta_minus;
    }
    r = clamp(r, params.rate_min, params.rate_max);
    if (agree >= 0.0) {
        w[i] = (1.0 - params.decay * r) * w[i] + r * s;
    }
    rate[i] = r;
    dw_old[i] = g;
}
`
